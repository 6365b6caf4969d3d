package main

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"collisionos/internal/domain"
	"collisionos/internal/service"
	"collisionos/mocks"
)

func TestParseS3URI(t *testing.T) {
	bucket, prefix, err := parseS3URI("s3://estimates/inbox/2025")
	require.NoError(t, err)
	assert.Equal(t, "estimates", bucket)
	assert.Equal(t, "inbox/2025", prefix)

	bucket, prefix, err = parseS3URI("s3://estimates")
	require.NoError(t, err)
	assert.Equal(t, "estimates", bucket)
	assert.Empty(t, prefix)

	_, _, err = parseS3URI("s3:///nope")
	assert.Error(t, err)
}

func TestCollectInputs_Directory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.ems"), []byte("CUST|fname=A"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nested", "b.XML"), []byte("<Owner/>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.pdf"), []byte("%PDF"), 0o644))

	ic := service.ImportContext{TenantID: "t-1", UserID: "u-1"}
	inputs, err := collectInputs(context.Background(), []string{dir}, nil, ic, true)
	require.NoError(t, err)
	require.Len(t, inputs, 2)

	names := []string{inputs[0].FileName, inputs[1].FileName}
	sort.Strings(names)
	assert.Equal(t, []string{"a.ems", "b.XML"}, names)
	for _, in := range inputs {
		assert.True(t, in.AutoCreate)
		assert.Equal(t, "t-1", in.TenantID)
		assert.Equal(t, "u-1", in.UserID)
		assert.NotEmpty(t, in.Content)
	}
}

func TestCollectInputs_ExplicitFileAlwaysTaken(t *testing.T) {
	p := filepath.Join(t.TempDir(), "estimate.dat")
	require.NoError(t, os.WriteFile(p, []byte("HDR|est_no=1"), 0o644))

	inputs, err := collectInputs(context.Background(), []string{p}, nil, service.ImportContext{}, false)
	require.NoError(t, err)
	require.Len(t, inputs, 1)
	assert.Equal(t, "estimate.dat", inputs[0].FileName)
}

func TestCollectInputs_S3Prefix(t *testing.T) {
	store := new(mocks.MockObjectStorage)
	store.On("List", mock.Anything, "estimates", "inbox/").
		Return([]string{"inbox/one.xml", "inbox/readme.md", "inbox/two.ems"}, nil)

	inputs, err := collectInputs(context.Background(), []string{"s3://estimates/inbox/"}, store, service.ImportContext{}, false)
	require.NoError(t, err)
	require.Len(t, inputs, 2)
	assert.Equal(t, "inbox/one.xml", inputs[0].StorageKey)
	assert.Equal(t, "estimates", inputs[0].StorageBucket)
	assert.Empty(t, inputs[0].Content)
	assert.Equal(t, "inbox/two.ems", inputs[1].StorageKey)
}

func TestCollectInputs_S3WithoutStorage(t *testing.T) {
	_, err := collectInputs(context.Background(), []string{"s3://estimates/x"}, nil, service.ImportContext{}, false)
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
}

func TestCollectInputs_MissingPath(t *testing.T) {
	_, err := collectInputs(context.Background(), []string{filepath.Join(t.TempDir(), "gone.ems")}, nil, service.ImportContext{}, false)
	assert.Error(t, err)
}
