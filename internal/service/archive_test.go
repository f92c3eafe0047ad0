package service

import (
	"bytes"
	"compress/gzip"
	"context"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvv-bao/profiler/internal/app/appconfig"
	"github.com/kvv-bao/profiler/internal/core/profiletree"
)

func TestArchiveDisabled(t *testing.T) {
	s := NewArchive(&appconfig.Config{}, nil)
	assert.False(t, s.Enabled())
	assert.NoError(t, s.ExportDocument(context.Background(), testTree(t).Document()))
}

func TestArchiveDocumentKey(t *testing.T) {
	conf := &appconfig.Config{}
	conf.ExportS3Prefix = "profile-trees/"

	assert.Equal(t, "profile-trees/snap.json.gz", NewArchive(conf, nil).DocumentKey("snap"))
}

func TestEncodeDocument(t *testing.T) {
	doc := testTree(t).Document()

	b, err := encodeDocument(doc)
	require.NoError(t, err)

	zr, err := gzip.NewReader(bytes.NewReader(b))
	require.NoError(t, err)

	var decoded profiletree.Document
	require.NoError(t, json.NewDecoder(zr).Decode(&decoded))
	assert.Equal(t, doc.SnapshotID, decoded.SnapshotID)
	assert.Equal(t, doc.ParameterHash, decoded.ParameterHash)
	assert.Len(t, decoded.Nodes, len(doc.Nodes))

	_, err = profiletree.FromDocument(&decoded)
	assert.NoError(t, err)
}
