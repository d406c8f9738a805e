package compute

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute/v2"
	"github.com/entigolabs/azure-fluent/arm"
	"github.com/entigolabs/azure-fluent/fluent"
	"github.com/entigolabs/azure-fluent/model"
	"github.com/samber/lo"
)

type DiskSkuType = armcompute.DiskStorageAccountTypes

const (
	DiskSkuStandardLRS    DiskSkuType = armcompute.DiskStorageAccountTypesStandardLRS
	DiskSkuStandardSSDLRS DiskSkuType = armcompute.DiskStorageAccountTypesStandardSSDLRS
	DiskSkuPremiumLRS     DiskSkuType = armcompute.DiskStorageAccountTypesPremiumLRS
)

type Disks struct {
	*fluent.Collection[armcompute.Disk, *Disk]
	manager *Manager
}

func (d *Disks) Define(name string) *Disk {
	return d.newDisk(&armcompute.Disk{Name: to.Ptr(name)})
}

func (d *Disks) WrapModel(inner *armcompute.Disk) *Disk {
	disk := d.newDisk(inner)
	disk.Load(inner.ID, inner.Name, inner.Location, inner.Tags)
	return disk
}

func (d *Disks) newDisk(inner *armcompute.Disk) *Disk {
	disk := &Disk{disks: d, inner: inner}
	disk.Groupable = fluent.NewGroupable(disk, d.manager.resources.ResourceGroups(), lo.FromPtr(inner.Name))
	return disk
}

// Disk is the fluent wrapper of armcompute.Disk.
type Disk struct {
	*fluent.Groupable[*Disk]
	disks    *Disks
	inner    *armcompute.Disk
	creation *armcompute.CreationData
	size     *int32
	sku      *DiskSkuType
	osType   *armcompute.OperatingSystemTypes
}

func (d *Disk) Inner() *armcompute.Disk {
	return d.inner
}

func (d *Disk) ID() string {
	return lo.FromPtr(d.inner.ID)
}

func (d *Disk) IsInCreateMode() bool {
	return d.inner.ID == nil
}

func (d *Disk) properties() *armcompute.DiskProperties {
	if d.inner.Properties == nil {
		return &armcompute.DiskProperties{}
	}
	return d.inner.Properties
}

func (d *Disk) SizeInGB() int32 {
	return lo.FromPtr(d.properties().DiskSizeGB)
}

func (d *Disk) Sku() DiskSkuType {
	if d.inner.SKU == nil {
		return ""
	}
	return lo.FromPtr(d.inner.SKU.Name)
}

func (d *Disk) OSType() armcompute.OperatingSystemTypes {
	return lo.FromPtr(d.properties().OSType)
}

func (d *Disk) State() armcompute.DiskState {
	return lo.FromPtr(d.properties().DiskState)
}

func (d *Disk) CreationMethod() armcompute.DiskCreateOption {
	if d.properties().CreationData == nil {
		return ""
	}
	return lo.FromPtr(d.properties().CreationData.CreateOption)
}

// VirtualMachineID returns the id of the virtual machine the disk is attached to.
func (d *Disk) VirtualMachineID() string {
	return lo.FromPtr(d.inner.ManagedBy)
}

func (d *Disk) IsAttachedToVirtualMachine() bool {
	return d.VirtualMachineID() != ""
}

// WithData defines an empty data disk, WithSizeInGB sets its size.
func (d *Disk) WithData() *Disk {
	d.creation = &armcompute.CreationData{CreateOption: to.Ptr(armcompute.DiskCreateOptionEmpty)}
	return d
}

func (d *Disk) WithSizeInGB(size int32) *Disk {
	if d.creation == nil && d.IsInCreateMode() {
		d.WithData()
	}
	d.size = to.Ptr(size)
	return d
}

// WithCopyFrom copies an existing managed disk or snapshot.
func (d *Disk) WithCopyFrom(sourceID string) *Disk {
	d.creation = &armcompute.CreationData{
		CreateOption:     to.Ptr(armcompute.DiskCreateOptionCopy),
		SourceResourceID: to.Ptr(sourceID),
	}
	return d
}

// WithImage creates the disk from a platform or gallery image version id.
func (d *Disk) WithImage(imageID string) *Disk {
	d.creation = &armcompute.CreationData{
		CreateOption:   to.Ptr(armcompute.DiskCreateOptionFromImage),
		ImageReference: &armcompute.ImageDiskReference{ID: to.Ptr(imageID)},
	}
	return d
}

func (d *Disk) WithSku(sku DiskSkuType) *Disk {
	d.sku = to.Ptr(sku)
	return d
}

func (d *Disk) WithOSType(osType armcompute.OperatingSystemTypes) *Disk {
	d.osType = to.Ptr(osType)
	return d
}

func (d *Disk) Create(ctx context.Context) (*Disk, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	tasks := fluent.NewTaskGroup()
	tasks.Add("disk/"+d.Name(), d.Submit, d.Prepare(tasks))
	if err := tasks.Run(ctx); err != nil {
		return nil, err
	}
	d.CreatedResourceGroup()
	log.Printf("Created disk %s\n", d.Name())
	return d, nil
}

func (d *Disk) Update() *Disk {
	return d
}

func (d *Disk) Apply(ctx context.Context) (*Disk, error) {
	if err := d.Submit(ctx); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Disk) Refresh(ctx context.Context) (*Disk, error) {
	inner, err := d.disks.Resources().Get(ctx, d.ResourceGroupName(), d.Name())
	if err != nil {
		return nil, err
	}
	d.inner = inner
	d.Load(inner.ID, inner.Name, inner.Location, inner.Tags)
	return d, nil
}

func (d *Disk) Delete(ctx context.Context) error {
	return d.disks.DeleteByResourceGroup(ctx, d.ResourceGroupName(), d.Name())
}

func (d *Disk) Prepare(tasks *fluent.TaskGroup) string {
	return d.PrepareResourceGroup(tasks)
}

// Submit issues a PUT in create mode and a PATCH of size, sku and tags otherwise.
func (d *Disk) Submit(ctx context.Context) error {
	var sku *armcompute.DiskSKU
	if d.sku != nil {
		sku = &armcompute.DiskSKU{Name: d.sku}
	}
	var inner *armcompute.Disk
	var err error
	if d.IsInCreateMode() {
		if d.creation == nil {
			return model.NewValidationError(d.Name(), "disk source is required")
		}
		if d.creation.CreateOption != nil && *d.creation.CreateOption == armcompute.DiskCreateOptionEmpty && d.size == nil {
			return model.NewValidationError(d.Name(), "size is required for an empty disk")
		}
		body := armcompute.Disk{
			Location: to.Ptr(d.RegionName()),
			Tags:     d.TagPointers(),
			SKU:      sku,
			Properties: &armcompute.DiskProperties{
				CreationData: d.creation,
				DiskSizeGB:   d.size,
				OSType:       d.osType,
			},
		}
		inner, err = d.disks.Resources().CreateOrUpdate(ctx, body, d.ResourceGroupName(), d.Name())
	} else {
		body := armcompute.DiskUpdate{
			Tags: d.TagPointers(),
			SKU:  sku,
			Properties: &armcompute.DiskUpdateProperties{
				DiskSizeGB: d.size,
				OSType:     d.osType,
			},
		}
		inner, err = d.disks.Resources().Update(ctx, body, d.ResourceGroupName(), d.Name())
	}
	if err != nil {
		return fmt.Errorf("failed to submit disk %s: %w", d.Name(), err)
	}
	d.inner = inner
	d.creation = nil
	d.size = nil
	d.sku = nil
	d.osType = nil
	return nil
}

// GrantAccess returns a read only SAS uri to the disk content, valid for duration.
func (d *Disk) GrantAccess(ctx context.Context, duration time.Duration) (string, error) {
	path, err := d.disks.Resources().Path(d.ResourceGroupName(), d.Name())
	if err != nil {
		return "", err
	}
	body := armcompute.GrantAccessData{
		Access:            to.Ptr(armcompute.AccessLevelRead),
		DurationInSeconds: to.Ptr(int32(duration.Seconds())),
	}
	result, err := arm.DoLongRunning[armcompute.AccessURI](ctx, d.disks.Resources().Client(), http.MethodPost,
		path+"/beginGetAccess", DiskAPIVersion, body)
	if err != nil {
		return "", fmt.Errorf("failed to grant access to disk %s: %w", d.Name(), err)
	}
	return lo.FromPtr(result.AccessSAS), nil
}

func (d *Disk) RevokeAccess(ctx context.Context) error {
	if err := d.disks.Resources().Action(ctx, "endGetAccess", nil, d.ResourceGroupName(), d.Name()); err != nil {
		return fmt.Errorf("failed to revoke access to disk %s: %w", d.Name(), err)
	}
	return nil
}
