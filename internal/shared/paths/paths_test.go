package paths

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getsiphon/siphonfs/internal/fserr"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"dot and dotdot", "a/b/./c/../d", "a/b/d"},
		{"scheme preserved", "scheme://x/../y", "scheme://y"},
		{"absolute untouched", "/data/caches/file.txt", "/data/caches/file.txt"},
		{"dot segments dropped", "./a/./b", "a/b"},
		{"dotdot pops", "a/b/../../c", "c"},
		{"dotdot beyond start is a no-op", "../a", "a"},
		{"empty", "", ""},
		{"file scheme", "file:///tmp/./x", "file:///tmp/x"},
		{"trailing slash kept", "a/b/", "a/b/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"a/b/./c/../d",
		"scheme://x/../y",
		"/data/caches/siphon-data-app/./x/../y.txt",
		"../../a",
		"",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func testBases() BaseDirs {
	return BaseDirs{
		Caches:    "/data/caches",
		Documents: "/data/documents",
		Library:   "/data/library",
	}
}

func TestNewPolicyRequiresAppID(t *testing.T) {
	_, err := NewPolicy("", PlatformIOS, testBases())
	require.Error(t, err)
	assert.Equal(t, fserr.CodeConfiguration, fserr.CodeOf(err))
}

func TestSandboxedRoot(t *testing.T) {
	policy, err := NewPolicy("com.example.notes", PlatformIOS, testBases())
	require.NoError(t, err)

	assert.Equal(t, "/data/caches/siphon-data-com.example.notes", policy.SandboxedRoot("/data/caches"))
	// A trailing slash on the base must not produce a double separator.
	assert.Equal(t, "/data/caches/siphon-data-com.example.notes", policy.SandboxedRoot("/data/caches/"))
}

func TestPolicyRootsByPlatform(t *testing.T) {
	ios, err := NewPolicy("app", PlatformIOS, testBases())
	require.NoError(t, err)
	assert.Len(t, ios.Roots(), 3)

	android, err := NewPolicy("app", PlatformAndroid, testBases())
	require.NoError(t, err)
	assert.Len(t, android.Roots(), 2)

	_, ok := android.Root(KindLibrary)
	assert.False(t, ok)
}

func TestOwnerRoot(t *testing.T) {
	policy, err := NewPolicy("app", PlatformIOS, testBases())
	require.NoError(t, err)

	caches, ok := policy.Root(KindCaches)
	require.True(t, ok)
	docs, ok := policy.Root(KindDocuments)
	require.True(t, ok)
	lib, ok := policy.Root(KindLibrary)
	require.True(t, ok)

	tests := []struct {
		name string
		path string
		want RootKind
		ok   bool
	}{
		{"caches file", caches.Path + "/x.txt", KindCaches, true},
		{"documents file", docs.Path + "/a/b", KindDocuments, true},
		{"library file", lib.Path + "/pref.plist", KindLibrary, true},
		{"root itself", caches.Path, KindCaches, true},
		{"outside sandbox", "/data/caches/other-app/x", "", false},
		{"unrelated", "/etc/passwd", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, ok := policy.OwnerRoot(tt.path)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, root.Kind)
			}
		})
	}
}

func TestOwnerRootNormalizesFirst(t *testing.T) {
	policy, err := NewPolicy("app", PlatformIOS, testBases())
	require.NoError(t, err)

	caches, _ := policy.Root(KindCaches)
	root, ok := policy.OwnerRoot(caches.Path + "/sub/../x.txt")
	require.True(t, ok)
	assert.Equal(t, KindCaches, root.Kind)
}

func TestOwnerRootEscapeViaDotDot(t *testing.T) {
	policy, err := NewPolicy("app", PlatformIOS, testBases())
	require.NoError(t, err)

	caches, _ := policy.Root(KindCaches)
	// ".." climbing out of the sandboxed root resolves before the prefix
	// check, so the escape is rejected.
	_, ok := policy.OwnerRoot(caches.Path + "/../../../etc/passwd")
	assert.False(t, ok)
}

func TestOwnerRootPrefixIsNotSegmentAware(t *testing.T) {
	policy, err := NewPolicy("app", PlatformIOS, testBases())
	require.NoError(t, err)

	caches, _ := policy.Root(KindCaches)
	// Documented behavior: a sibling directory sharing the root as a string
	// prefix still matches.
	root, ok := policy.OwnerRoot(caches.Path + "-extra/file")
	assert.True(t, ok)
	assert.Equal(t, KindCaches, root.Kind)
}
