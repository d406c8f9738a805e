package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/storage/armstorage"
	"github.com/entigolabs/azure-fluent/arm"
	"github.com/samber/lo"
)

type AccountKey struct {
	Name  string
	Value string
}

// ConnectionString builds the classic shared key connection string of an account.
func ConnectionString(accountName, accountKey string) string {
	return fmt.Sprintf(connectionStringBase, accountName, accountKey, endpointSuffix)
}

func (s *StorageAccount) Keys(ctx context.Context) ([]AccountKey, error) {
	return s.keys(ctx, "listKeys", nil)
}

func (s *StorageAccount) RegenerateKey(ctx context.Context, keyName string) ([]AccountKey, error) {
	return s.keys(ctx, "regenerateKey", armstorage.AccountRegenerateKeyParameters{KeyName: to.Ptr(keyName)})
}

func (s *StorageAccount) ConnectionString(ctx context.Context) (string, error) {
	keys, err := s.Keys(ctx)
	if err != nil {
		return "", err
	}
	return ConnectionString(s.Name(), keys[0].Value), nil
}

func (s *StorageAccount) keys(ctx context.Context, action string, body any) ([]AccountKey, error) {
	path, err := s.accounts.Resources().Path(s.ResourceGroupName(), s.Name())
	if err != nil {
		return nil, err
	}
	result, err := arm.Do[armstorage.AccountListKeysResult](ctx, s.accounts.Resources().Client(), http.MethodPost,
		path+"/"+action, APIVersion, body, http.StatusOK)
	if err != nil {
		return nil, fmt.Errorf("failed to list storage account keys: %w", err)
	}
	keys := make([]AccountKey, 0, len(result.Keys))
	for _, key := range result.Keys {
		if key == nil || key.Value == nil {
			continue
		}
		keys = append(keys, AccountKey{Name: lo.FromPtr(key.KeyName), Value: *key.Value})
	}
	if len(keys) == 0 {
		return nil, errors.New("no storage account keys found")
	}
	return keys, nil
}
