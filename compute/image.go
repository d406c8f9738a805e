package compute

import (
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute/v2"
	"github.com/samber/lo"
)

const latestVersion = "latest"

// Image names a marketplace image by publisher, offer and sku.
type Image struct {
	Publisher string
	Offer     string
	SKU       string
	Version   string
}

var (
	UbuntuServer2004 = Image{Publisher: "Canonical", Offer: "0001-com-ubuntu-server-focal", SKU: "20_04-lts-gen2"}
	UbuntuServer2204 = Image{Publisher: "Canonical", Offer: "0001-com-ubuntu-server-jammy", SKU: "22_04-lts-gen2"}
	Debian11         = Image{Publisher: "Debian", Offer: "debian-11", SKU: "11-gen2"}
	Debian12         = Image{Publisher: "Debian", Offer: "debian-12", SKU: "12-gen2"}
	CentOS85         = Image{Publisher: "OpenLogic", Offer: "CentOS", SKU: "8_5-gen2"}
	SLES15           = Image{Publisher: "SUSE", Offer: "sles-15-sp5", SKU: "gen2"}

	WindowsServer2016Datacenter = Image{Publisher: "MicrosoftWindowsServer", Offer: "WindowsServer", SKU: "2016-Datacenter"}
	WindowsServer2019Datacenter = Image{Publisher: "MicrosoftWindowsServer", Offer: "WindowsServer", SKU: "2019-Datacenter"}
	WindowsServer2022Datacenter = Image{Publisher: "MicrosoftWindowsServer", Offer: "WindowsServer", SKU: "2022-datacenter-azure-edition"}
)

var popularImages = map[string]Image{
	"ubuntu2004":  UbuntuServer2004,
	"ubuntu2204":  UbuntuServer2204,
	"debian11":    Debian11,
	"debian12":    Debian12,
	"centos85":    CentOS85,
	"sles15":      SLES15,
	"windows2016": WindowsServer2016Datacenter,
	"windows2019": WindowsServer2019Datacenter,
	"windows2022": WindowsServer2022Datacenter,
}

// ParseImage resolves a popular image alias or a publisher:offer:sku[:version] urn.
func ParseImage(value string) (Image, error) {
	if image, found := popularImages[value]; found {
		return image, nil
	}
	parts := strings.Split(value, ":")
	if len(parts) < 3 || len(parts) > 4 || lo.Contains(parts[:3], "") {
		return Image{}, fmt.Errorf("unknown image %q, use an alias or publisher:offer:sku[:version]", value)
	}
	if len(parts) == 3 {
		parts = append(parts, "")
	}
	return Image{Publisher: parts[0], Offer: parts[1], SKU: parts[2], Version: parts[3]}, nil
}

func (i Image) IsWindows() bool {
	return i.Publisher == WindowsServer2022Datacenter.Publisher
}

func (i Image) reference() *armcompute.ImageReference {
	version := i.Version
	if version == "" {
		version = latestVersion
	}
	return &armcompute.ImageReference{
		Publisher: to.Ptr(i.Publisher),
		Offer:     to.Ptr(i.Offer),
		SKU:       to.Ptr(i.SKU),
		Version:   to.Ptr(version),
	}
}
