// Package testutil provides test data generators.
package testutil

import (
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// GenerateKeys returns count keys that sort in generation order.
func GenerateKeys(count int, prefix string) []string {
	keys := make([]string, count)
	for i := 0; i < count; i++ {
		keys[i] = fmt.Sprintf("%sobject-%07d.txt", prefix, i)
	}
	return keys
}

// ObjectsFromKeys converts keys into listing entries.
func ObjectsFromKeys(keys []string) []types.Object {
	objects := make([]types.Object, len(keys))
	for i, k := range keys {
		objects[i] = types.Object{Key: aws.String(k), Size: aws.Int64(int64(i + 1))}
	}
	return objects
}

// DeletedFromKeys builds the Deleted section of a DeleteObjects response.
func DeletedFromKeys(keys []string) []types.DeletedObject {
	deleted := make([]types.DeletedObject, len(keys))
	for i, k := range keys {
		deleted[i] = types.DeletedObject{Key: aws.String(k)}
	}
	return deleted
}

// KeysFromIdentifiers extracts the keys named in a DeleteObjects request.
func KeysFromIdentifiers(ids []types.ObjectIdentifier) []string {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = aws.ToString(id.Key)
	}
	return keys
}

// GenerateTestBucketName returns a unique, DNS-compliant bucket name for tests.
func GenerateTestBucketName(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}
