package appservice

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/appservice/armappservice/v2"
	"github.com/entigolabs/azure-fluent/arm"
	"github.com/samber/lo"
)

const scmDomain = ".scm.azurewebsites.net"

type PublishingProfile struct {
	FtpURL      string
	FtpUsername string
	FtpPassword string
	GitURL      string
	GitUsername string
	GitPassword string
}

type publishData struct {
	Profiles []struct {
		Method   string `xml:"publishMethod,attr"`
		URL      string `xml:"publishUrl,attr"`
		Username string `xml:"userName,attr"`
		Password string `xml:"userPWD,attr"`
	} `xml:"publishProfile"`
}

func parsePublishingProfile(data []byte, siteName string) (*PublishingProfile, error) {
	var publish publishData
	if err := xml.Unmarshal(data, &publish); err != nil {
		return nil, fmt.Errorf("failed to parse publishing profile: %w", err)
	}
	profile := &PublishingProfile{}
	for _, p := range publish.Profiles {
		switch strings.ToUpper(p.Method) {
		case "FTP":
			profile.FtpURL = strings.TrimPrefix(p.URL, "ftp://")
			profile.FtpUsername = p.Username
			profile.FtpPassword = p.Password
		case "MSDEPLOY":
			host := strings.TrimSuffix(p.URL, ":443")
			profile.GitURL = "https://" + host + "/" + siteName + ".git"
			profile.GitUsername = p.Username
			profile.GitPassword = p.Password
		}
	}
	return profile, nil
}

func (b *siteBase[W]) GetPublishingProfile(ctx context.Context) (*PublishingProfile, error) {
	path, err := b.path()
	if err != nil {
		return nil, err
	}
	data, err := arm.DoRaw(ctx, b.resources.Client(), http.MethodPost, path+"/publishxml", APIVersion,
		armappservice.CsmPublishingProfileOptions{Format: to.Ptr(armappservice.PublishingProfileFormat("Ftp"))},
		http.StatusOK)
	if err != nil {
		return nil, fmt.Errorf("failed to get publishing profile of %s: %w", b.Name(), err)
	}
	return parsePublishingProfile(data, b.Name())
}

func (b *siteBase[W]) publishingCredentials(ctx context.Context) (*armappservice.User, error) {
	path, err := b.path()
	if err != nil {
		return nil, err
	}
	user, err := arm.DoLongRunning[armappservice.User](ctx, b.resources.Client(), http.MethodPost,
		path+"/config/publishingcredentials/list", APIVersion, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list publishing credentials of %s: %w", b.Name(), err)
	}
	return user, nil
}

// scmHost returns the repository host name of the site, guessing the default one when the
// site has not been loaded with its SSL states.
func (b *siteBase[W]) scmHost() string {
	state, found := lo.Find(b.properties().HostNameSSLStates, func(state *armappservice.HostNameSSLState) bool {
		return state != nil && lo.FromPtr(state.HostType) == armappservice.HostType("Repository")
	})
	if found && lo.FromPtr(state.Name) != "" {
		return lo.FromPtr(state.Name)
	}
	if b.parent != "" {
		return b.parent + "-" + b.Name() + scmDomain
	}
	return b.Name() + scmDomain
}

// Kudu returns a client of the site's SCM endpoint authenticated with its publishing credentials.
func (b *siteBase[W]) Kudu(ctx context.Context) (*KuduClient, error) {
	user, err := b.publishingCredentials(ctx)
	if err != nil {
		return nil, err
	}
	var username, password string
	if user.Properties != nil {
		username = lo.FromPtr(user.Properties.PublishingUserName)
		password = lo.FromPtr(user.Properties.PublishingPassword)
	}
	return newKuduClient("https://"+b.scmHost(), username, password, b.manager.kuduDelay), nil
}

func (b *siteBase[W]) WarDeploy(ctx context.Context, war io.Reader, appName string) error {
	kudu, err := b.Kudu(ctx)
	if err != nil {
		return err
	}
	return kudu.WarDeploy(ctx, war, appName)
}

func (b *siteBase[W]) ZipDeploy(ctx context.Context, zip io.Reader) error {
	kudu, err := b.Kudu(ctx)
	if err != nil {
		return err
	}
	return kudu.ZipDeploy(ctx, zip)
}

func (b *siteBase[W]) StreamApplicationLogs(ctx context.Context) (io.ReadCloser, error) {
	kudu, err := b.Kudu(ctx)
	if err != nil {
		return nil, err
	}
	return kudu.StreamApplicationLogs(ctx)
}
