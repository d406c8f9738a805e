package arm

import (
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/samber/lo"
)

func StringMap(values map[string]string) map[string]*string {
	if values == nil {
		return nil
	}
	return lo.MapValues(values, func(value string, _ string) *string {
		return to.Ptr(value)
	})
}

func FromStringMap(values map[string]*string) map[string]string {
	result := make(map[string]string, len(values))
	for key, value := range values {
		if value != nil {
			result[key] = *value
		}
	}
	return result
}

func Strings(values []*string) []string {
	return lo.FilterMap(values, func(value *string, _ int) (string, bool) {
		return lo.FromPtr(value), value != nil
	})
}
