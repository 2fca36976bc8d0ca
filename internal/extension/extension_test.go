package extension

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitegen/internal/artifact"
	"git.home.luguber.info/inful/sitegen/internal/config"
)

// fakeExtension records invocations and returns canned artifacts.
type fakeExtension struct {
	name      string
	stages    []Stage
	artifacts []artifact.Artifact
	err       error
	runs      int
}

func (f *fakeExtension) Name() string    { return f.name }
func (f *fakeExtension) Stages() []Stage { return f.stages }

func (f *fakeExtension) Run(_ context.Context, _ Stage, _ *HookContext) ([]artifact.Artifact, error) {
	f.runs++
	return f.artifacts, f.err
}

func fakeFactory(ext Extension) Factory {
	return func(_ map[string]any) (Extension, error) { return ext, nil }
}

func TestRegistry_RegisterAndResolve(t *testing.T) {
	reg := NewRegistry()
	ext := &fakeExtension{name: "fake", stages: []Stage{StageAfterBuild}}
	require.NoError(t, reg.Register("fake", fakeFactory(ext)))

	assert.True(t, reg.Has("fake"))
	assert.False(t, reg.Has("other"))

	resolved, err := reg.Resolve("fake", nil)
	require.NoError(t, err)
	assert.Equal(t, "fake", resolved.Name())
}

func TestRegistry_RegisterRejectsDuplicatesAndNil(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register("fake", fakeFactory(&fakeExtension{name: "fake"})))

	assert.Error(t, reg.Register("fake", fakeFactory(&fakeExtension{name: "fake"})))
	assert.Error(t, reg.Register("", fakeFactory(&fakeExtension{})))
	assert.Error(t, reg.Register("nilfactory", nil))
}

func TestRegistry_ResolveUnknown(t *testing.T) {
	_, err := NewRegistry().Resolve("ghost", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"ghost" not registered`)
}

func TestRegistry_ResolveFactoryError(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register("broken", func(_ map[string]any) (Extension, error) {
		return nil, fmt.Errorf("bad option")
	}))
	_, err := reg.Resolve("broken", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `configure extension "broken"`)
}

func TestRegistry_ResolveEnabledPreservesConfigOrder(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register("a", fakeFactory(&fakeExtension{name: "a"})))
	require.NoError(t, reg.Register("b", fakeFactory(&fakeExtension{name: "b"})))

	exts, err := reg.ResolveEnabled([]config.ExtensionConfig{
		{Name: "b"}, {Name: "a"},
	})
	require.NoError(t, err)
	require.Len(t, exts, 2)
	assert.Equal(t, "b", exts[0].Name())
	assert.Equal(t, "a", exts[1].Name())
}

func TestRunStage_FiltersBySubscription(t *testing.T) {
	before := &fakeExtension{name: "before", stages: []Stage{StageBeforeBuild}}
	after := &fakeExtension{name: "after", stages: []Stage{StageAfterBuild}}

	_, err := RunStage(context.Background(), []Extension{before, after}, StageAfterBuild, &HookContext{})
	require.NoError(t, err)
	assert.Equal(t, 0, before.runs)
	assert.Equal(t, 1, after.runs)
}

func TestRunStage_AttributesArtifacts(t *testing.T) {
	ext := &fakeExtension{
		name:   "tagger",
		stages: []Stage{StageAfterBuild},
		artifacts: []artifact.Artifact{
			{Dest: "a.txt", Data: []byte("a")},
			{Dest: "b.txt", Data: []byte("b"), Origin: "explicit"},
		},
	}
	out, err := RunStage(context.Background(), []Extension{ext}, StageAfterBuild, &HookContext{})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "tagger", out[0].Origin)
	assert.Equal(t, "explicit", out[1].Origin)
}

func TestRunStage_FirstErrorAborts(t *testing.T) {
	failing := &fakeExtension{name: "boom", stages: []Stage{StageAfterBuild}, err: fmt.Errorf("kaput")}
	later := &fakeExtension{name: "later", stages: []Stage{StageAfterBuild}}

	_, err := RunStage(context.Background(), []Extension{failing, later}, StageAfterBuild, &HookContext{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extension boom")
	assert.Equal(t, 0, later.runs)
}
