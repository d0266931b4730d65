package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorBuilder_Basic(t *testing.T) {
	base := stderrors.New("label file not found")

	err := New(base).
		Component("inference").
		Category(CategoryLabelLoad).
		Context("label_path", "labels.txt").
		Build()

	require.NotNil(t, err)
	assert.Equal(t, "label file not found", err.Error())
	assert.Equal(t, "inference", err.GetComponent())
	assert.Equal(t, CategoryLabelLoad, err.Category)
	assert.Equal(t, "labels.txt", err.GetContext()["label_path"])
	assert.WithinDuration(t, time.Now(), err.GetTimestamp(), time.Second)
}

func TestErrorBuilder_DefaultCategory(t *testing.T) {
	err := Newf("something broke").Build()
	assert.Equal(t, CategoryGeneric, err.Category)
	assert.Equal(t, ComponentUnknown, err.GetComponent())
}

func TestEnhancedError_Unwrap(t *testing.T) {
	base := stderrors.New("base failure")
	wrapped := New(fmt.Errorf("context: %w", base)).Category(CategoryNetwork).Build()

	assert.True(t, Is(wrapped, base))
}

func TestHasCategory(t *testing.T) {
	timeoutErr := Newf("request timed out").
		Component("remote").
		Category(CategoryTimeout).
		Build()

	assert.True(t, HasCategory(timeoutErr, CategoryTimeout))
	assert.False(t, HasCategory(timeoutErr, CategoryHTTP))
	assert.False(t, HasCategory(stderrors.New("plain"), CategoryTimeout))

	// Category survives another layer of fmt wrapping
	outer := fmt.Errorf("classify failed: %w", timeoutErr)
	assert.True(t, HasCategory(outer, CategoryTimeout))
}

func TestWrap_PreservesMetadata(t *testing.T) {
	inner := Newf("upstream returned 503").
		Component("remote").
		Category(CategoryHTTP).
		Context("status_code", 503).
		Build()

	outer := Wrap(inner).Context("audio_path", "clip.wav").Build()

	assert.Equal(t, CategoryHTTP, outer.Category)
	assert.Equal(t, "remote", outer.GetComponent())
	assert.Equal(t, 503, outer.GetContext()["status_code"])
	assert.Equal(t, "clip.wav", outer.GetContext()["audio_path"])
}

func TestGetContext_ReturnsCopy(t *testing.T) {
	err := Newf("x").Context("k", "v").Build()
	ctx := err.GetContext()
	ctx["k"] = "mutated"
	assert.Equal(t, "v", err.GetContext()["k"])
}
