package storage

import (
	"testing"

	"github.com/mdiasanta/req-hunter/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectStorageType(t *testing.T) {
	assert.Equal(t, StorageTypeR2, detectStorageType("https://abc.r2.cloudflarestorage.com"))
	assert.Equal(t, StorageTypeS3, detectStorageType("s3.us-west-2.amazonaws.com"))
	assert.Equal(t, StorageTypeS3, detectStorageType(""))
	assert.Equal(t, StorageTypeS3Compatible, detectStorageType("localhost:9000"))
}

func TestEndpointURL(t *testing.T) {
	assert.Equal(t, "http://localhost:9000", endpointURL("localhost:9000", false))
	assert.Equal(t, "https://minio.internal", endpointURL("http://minio.internal/bucket/", true))
	assert.Equal(t, "", endpointURL("", true))
}

func TestGetURL(t *testing.T) {
	store, err := NewS3Storage(&config.StorageConfig{
		Endpoint:  "localhost:9000",
		AccessKey: "key",
		SecretKey: "secret",
		Bucket:    "snapshots",
		PublicURL: "https://cdn.example.com/",
	})
	require.NoError(t, err)
	assert.Equal(t, StorageTypeS3Compatible, store.storeType)
	assert.Equal(t, "https://cdn.example.com/snapshots/acme/1.png", store.GetURL("snapshots/acme/1.png"))

	store.publicURL = ""
	assert.Equal(t, "s3://snapshots/snapshots/acme/1.png", store.GetURL("snapshots/acme/1.png"))

	_, err = NewS3Storage(&config.StorageConfig{})
	assert.Error(t, err)
}
