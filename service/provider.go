package service

import (
	azarm "github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/entigolabs/azure-fluent/azure"
	"github.com/entigolabs/azure-fluent/common"
)

// NewAzure authenticates with the default credential chain against the subscription from flags.
func NewAzure(flags *common.Flags, options *azarm.ClientOptions) (*azure.Azure, error) {
	credential, err := azure.NewDefaultCredential()
	if err != nil {
		return nil, err
	}
	return azure.Authenticate(credential, flags.Azure.SubscriptionId, options)
}
