package promptmgr

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type staticSource struct {
	material string
	ok       bool
}

func (s staticSource) SourceMaterial() (string, bool) { return s.material, s.ok }

func TestMerge_CombinesSystemBeforeUser(t *testing.T) {
	t.Parallel()
	m := New()
	merged := m.Merge("translate this graph", "you are a translator")
	assert.True(t, strings.HasPrefix(merged, "you are a translator"))
	assert.True(t, strings.HasSuffix(merged, "translate this graph"))
	assert.Equal(t, 1, strings.Count(merged, "you are a translator"))
}

func TestMerge_Idempotent(t *testing.T) {
	t.Parallel()
	m := New()
	once := m.Merge("translate this graph", "you are a translator")
	twice := m.Merge(once, "you are a translator")
	assert.Equal(t, once, twice)
	assert.Equal(t, 1, strings.Count(twice, "you are a translator"))
}

func TestMerge_EmptySystemContent(t *testing.T) {
	t.Parallel()
	m := New()
	assert.Equal(t, "user text", m.Merge("user text", ""))
}

func TestMerge_Deterministic(t *testing.T) {
	t.Parallel()
	m := New()
	assert.Equal(t,
		m.Merge("u", "s"),
		m.Merge("u", "s"),
	)
}

func TestAugment_NoProviderIsNoOp(t *testing.T) {
	t.Parallel()
	m := New()
	assert.Equal(t, "content", m.AugmentWithSourceMaterial("content"))
}

func TestAugment_ProviderWithoutMaterialIsNoOp(t *testing.T) {
	t.Parallel()
	m := New(WithSourceProvider(staticSource{ok: false}))
	assert.Equal(t, "content", m.AugmentWithSourceMaterial("content"))

	m = New(WithSourceProvider(staticSource{material: "", ok: true}))
	assert.Equal(t, "content", m.AugmentWithSourceMaterial("content"))
}

func TestAugment_PrependsMaterial(t *testing.T) {
	t.Parallel()
	m := New(WithSourceProvider(staticSource{material: "class ADoor {};", ok: true}))
	out := m.AugmentWithSourceMaterial("translate this graph")
	assert.True(t, strings.HasPrefix(out, "Relevant source files:"))
	assert.Contains(t, out, "class ADoor {};")
	assert.True(t, strings.HasSuffix(out, "translate this graph"))
}

func TestAugment_DoesNotDuplicateMaterial(t *testing.T) {
	t.Parallel()
	m := New(WithSourceProvider(staticSource{material: "class ADoor {};", ok: true}))
	once := m.AugmentWithSourceMaterial("translate this graph")
	twice := m.AugmentWithSourceMaterial(once)
	assert.Equal(t, once, twice)
	assert.Equal(t, 1, strings.Count(twice, "class ADoor {};"))
}

func TestPrepare_SystemRoleCapableKeepsUserContentClean(t *testing.T) {
	t.Parallel()
	m := New(WithSourceProvider(staticSource{material: "srcfile", ok: true}))
	out := m.Prepare("user text", "system text", true)
	assert.NotContains(t, out, "system text")
	assert.Contains(t, out, "srcfile")
	assert.True(t, strings.HasSuffix(out, "user text"))
}

func TestPrepare_MergesWithoutSystemRole(t *testing.T) {
	t.Parallel()
	m := New(WithSourceProvider(staticSource{material: "srcfile", ok: true}))
	out := m.Prepare("user text", "system text", false)
	srcIdx := strings.Index(out, "srcfile")
	sysIdx := strings.Index(out, "system text")
	userIdx := strings.Index(out, "user text")
	assert.Less(t, srcIdx, sysIdx)
	assert.Less(t, sysIdx, userIdx)
}

func TestMergeThenAugment_MatchesPayloadOrder(t *testing.T) {
	t.Parallel()
	m := New(WithSourceProvider(staticSource{material: "srcfile", ok: true}))
	content := m.AugmentWithSourceMaterial(m.Merge("user", "system"))
	// Source material leads, then system instructions, then user content.
	srcIdx := strings.Index(content, "srcfile")
	sysIdx := strings.Index(content, "system")
	userIdx := strings.Index(content, "user")
	assert.Less(t, srcIdx, sysIdx)
	assert.Less(t, sysIdx, userIdx)
}
