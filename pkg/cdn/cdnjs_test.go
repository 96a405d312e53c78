package cdn

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCdnjsClient_LatestVersion(t *testing.T) {
	mock := NewMockHTTPFetcher()
	mock.AddResponse(
		"https://api.cdnjs.com/libraries/font-awesome?fields=name,version",
		200,
		`{"name": "font-awesome", "version": "6.4.2"}`,
	)

	client := NewCdnjsClient(mock)

	version, err := client.LatestVersion(context.Background(), "font-awesome")
	require.NoError(t, err)
	assert.Equal(t, "6.4.2", version)
}

func TestCdnjsClient_LatestVersion_NotFound(t *testing.T) {
	mock := NewMockHTTPFetcher()
	client := NewCdnjsClient(mock)

	_, err := client.LatestVersion(context.Background(), "no-such-library")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestCdnjsClient_LatestVersion_UpstreamError(t *testing.T) {
	mock := NewMockHTTPFetcher()
	mock.AddResponse(
		"https://api.cdnjs.com/libraries/font-awesome?fields=name,version",
		500,
		`{"error": true}`,
	)

	client := NewCdnjsClient(mock)

	_, err := client.LatestVersion(context.Background(), "font-awesome")
	require.Error(t, err)

	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, Cdnjs, upstream.Provider)
	assert.Equal(t, 500, upstream.StatusCode)
}

func TestCdnjsClient_Files(t *testing.T) {
	mock := NewMockHTTPFetcher()
	mock.AddResponse(
		"https://api.cdnjs.com/libraries/font-awesome/6.4.2",
		200,
		`{
			"files": ["css/all.min.css", "js/all.min.js"],
			"sri": {
				"css/all.min.css": "sha512-css",
				"js/all.min.js": "sha512-js"
			}
		}`,
	)

	client := NewCdnjsClient(mock)

	files, err := client.Files(context.Background(), "font-awesome", "6.4.2")
	require.NoError(t, err)
	require.Len(t, files, 2)

	assert.Equal(t, "https://cdnjs.cloudflare.com/ajax/libs/font-awesome/6.4.2/css/all.min.css", files[0].URL)
	assert.Equal(t, "css/all.min.css", files[0].Name)
	assert.Equal(t, "sha512-css", files[0].Integrity)
}

func TestCdnjsClient_Files_NotFoundIsEmpty(t *testing.T) {
	mock := NewMockHTTPFetcher()
	client := NewCdnjsClient(mock)

	files, err := client.Files(context.Background(), "font-awesome", "0.0.0")
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestCdnjsClient_ReleaseNotesURL(t *testing.T) {
	mock := NewMockHTTPFetcher()
	mock.AddResponse(
		"https://api.cdnjs.com/libraries/font-awesome?fields=repository",
		200,
		`{"repository": {"type": "git", "url": "https://github.com/FortAwesome/Font-Awesome.git"}}`,
	)
	mock.AddResponse(
		"https://github.com/FortAwesome/Font-Awesome/releases/tag/6.4.2",
		200,
		"<html></html>",
	)

	client := NewCdnjsClient(mock)

	// v-prefixed tag misses (mock 404), the bare tag matches.
	notes := client.ReleaseNotesURL(context.Background(), "font-awesome", "6.4.2")
	assert.Equal(t, "https://github.com/FortAwesome/Font-Awesome/releases/tag/6.4.2", notes)
}

func TestCdnjsClient_ReleaseNotesURL_NoRepository(t *testing.T) {
	mock := NewMockHTTPFetcher()
	mock.AddResponse(
		"https://api.cdnjs.com/libraries/font-awesome?fields=repository",
		200,
		`{}`,
	)

	client := NewCdnjsClient(mock)

	assert.Empty(t, client.ReleaseNotesURL(context.Background(), "font-awesome", "6.4.2"))
}
