package imports

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toastate/toastpack/internal/buffers"
)

type bundleFixture struct {
	dest    string
	sources []string
}

func buildMap(t *testing.T, fixtures ...bundleFixture) *buffers.Map {
	t.Helper()
	bm := buffers.New()
	for _, f := range fixtures {
		e, ok := bm.Create(f.dest)
		require.True(t, ok)
		for _, src := range f.sources {
			e.Add(src, []byte("// "+src))
		}
	}
	return bm
}

func entry(t *testing.T, bm *buffers.Map, dest string) *buffers.Entry {
	t.Helper()
	e, ok := bm.Get(dest)
	require.True(t, ok)
	return e
}

func TestManagerRewritesCrossBundleImports(t *testing.T) {
	bm := buildMap(t,
		bundleFixture{"/bundle1.js", []string{"/src/x.js"}},
		bundleFixture{"/bundle2.js", []string{"/src/y.js"}},
	)

	m := NewManager()
	m.Read("import {foo} from './y.js';", "x.js")
	m.Read("const bar = foo();", "x.js")

	out, err := m.Process(bm)
	require.NoError(t, err)

	b1 := entry(t, out, "/bundle1.js")
	assert.Equal(t, "import {foo} from './bundle2.js';", string(b1.Header))
	assert.Nil(t, b1.Footer)

	b2 := entry(t, out, "/bundle2.js")
	assert.Nil(t, b2.Header)
	assert.Equal(t, "export {foo};", string(b2.Footer))

	// the input map is not modified
	assert.Nil(t, entry(t, bm, "/bundle1.js").Header)
}

func TestManagerDropsSelfImports(t *testing.T) {
	bm := buildMap(t,
		bundleFixture{"/bundle.js", []string{"/src/constants.js", "/src/utils/helper.js", "/src/app.js"}},
	)

	m := NewManager()
	m.Read("import {APP_VERSION} from './constants.js';", "app.js")
	m.Read("import {add} from './utils/helper.js';", "app.js")

	out, err := m.Process(bm)
	require.NoError(t, err)

	b := entry(t, out, "/bundle.js")
	assert.Nil(t, b.Header)
	assert.Nil(t, b.Footer)
}

func TestManagerMergesImportsFromSameBundle(t *testing.T) {
	bm := buildMap(t,
		bundleFixture{"main.js", []string{"/src/dist/main.js"}},
		bundleFixture{"/modules/app.js", []string{"/src/dist/modules/data.js", "/src/dist/modules/router.js", "/src/dist/modules/app.js"}},
		bundleFixture{"/modules/services/quizzes.js", []string{"/src/dist/modules/services/quizzes.js"}},
	)

	m := NewManager()
	m.Read("import {Data} from './modules/data.js';", "main.js")
	m.Read("import {Router} from './modules/router.js';", "main.js")
	m.Read("import {Data, Page} from './modules/app.js';", "main.js")
	m.Read("import {Data} from '../data.js';", "quizzes.js")
	m.Read("import {Router} from './router.js';", "app.js")

	out, err := m.Process(bm)
	require.NoError(t, err)

	main := entry(t, out, "main.js")
	assert.Equal(t, "import {Data, Router, Page} from './modules/app.js';", string(main.Header))

	quizzes := entry(t, out, "/modules/services/quizzes.js")
	assert.Equal(t, "import {Data} from './../app.js';", string(quizzes.Header))

	app := entry(t, out, "/modules/app.js")
	assert.Nil(t, app.Header)
	assert.Equal(t, "export {Data, Page, Router};", string(app.Footer))
}

func TestManagerIsDeterministic(t *testing.T) {
	run := func() string {
		bm := buildMap(t,
			bundleFixture{"/a.js", []string{"/src/a.js"}},
			bundleFixture{"/b.js", []string{"/src/b.js", "/src/c.js"}},
		)
		m := NewManager()
		m.Read("import {zeta, alpha} from './b.js';", "a.js")
		m.Read("import {mid} from './c.js';", "a.js")
		out, err := m.Process(bm)
		require.NoError(t, err)
		return string(entry(t, out, "/a.js").Bytes()) + "|" + string(entry(t, out, "/b.js").Bytes())
	}
	first := run()
	assert.Equal(t, first, run())
	assert.Contains(t, first, "import {zeta, alpha, mid} from './b.js';")
	assert.Contains(t, first, "export {alpha, mid, zeta};")
}

func TestSeedBundlesRejectsDuplicateBaseNames(t *testing.T) {
	bm := buildMap(t,
		bundleFixture{"/modules/app.js", nil},
		bundleFixture{"/legacy/app.js", nil},
		bundleFixture{"/index.html", nil},
		bundleFixture{"/legacy/index.html", nil},
	)
	_, err := SeedBundles(bm)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateBundle))
	assert.Contains(t, err.Error(), "app.js")
}

func TestSeedBundlesSkipsNonScripts(t *testing.T) {
	bm := buildMap(t,
		bundleFixture{"/index.html", nil},
		bundleFixture{"/style.css", nil},
		bundleFixture{"/main.js", nil},
	)
	bundles, err := SeedBundles(bm)
	require.NoError(t, err)
	assert.Equal(t, []string{"main.js"}, bundles.Names())
}

func TestAttributeImportsErrors(t *testing.T) {
	bm := buildMap(t, bundleFixture{"/main.js", []string{"/src/main.js"}})
	bundles, err := SeedBundles(bm)
	require.NoError(t, err)

	t.Run("unknown owner", func(t *testing.T) {
		c := NewCaptured()
		c.Add("ghost.js", "import {a} from './main.js';")
		_, err := AttributeImports(bundles, c, bm)
		assert.True(t, errors.Is(err, ErrUnknownFile))
	})

	t.Run("unknown target", func(t *testing.T) {
		c := NewCaptured()
		c.Add("main.js", "import {a} from './missing.js';")
		_, err := AttributeImports(bundles, c, bm)
		assert.True(t, errors.Is(err, ErrUnknownFile))
		assert.Contains(t, err.Error(), "./missing.js")
	})

	t.Run("wildcard", func(t *testing.T) {
		c := NewCaptured()
		c.Add("main.js", "import * as all from './main.js';")
		_, err := AttributeImports(bundles, c, bm)
		assert.True(t, errors.Is(err, ErrUnsupportedImport))
	})

	t.Run("unparsable", func(t *testing.T) {
		c := NewCaptured()
		c.Add("main.js", "import main from './main.js';")
		_, err := AttributeImports(bundles, c, bm)
		assert.True(t, errors.Is(err, ErrUnparsableImport))
	})
}

func TestPassesArePure(t *testing.T) {
	bm := buildMap(t,
		bundleFixture{"/a.js", []string{"/src/a.js"}},
		bundleFixture{"/b.js", []string{"/src/b.js"}},
	)
	seeded, err := SeedBundles(bm)
	require.NoError(t, err)

	c := NewCaptured()
	c.Add("a.js", "import {x} from './b.js';")
	c.Add("a.js", "import {y} from './b.js';")

	attributed, err := AttributeImports(seeded, c, bm)
	require.NoError(t, err)
	fd, _ := attributed.Get("a.js")
	assert.Len(t, fd.Imports, 2)

	seededA, _ := seeded.Get("a.js")
	assert.Empty(t, seededA.Imports)

	merged := MergeImports(attributed)
	mfd, _ := merged.Get("a.js")
	require.Len(t, mfd.Imports, 1)
	assert.Equal(t, []string{"x", "y"}, mfd.Imports[0].Names)
	assert.Len(t, fd.Imports, 2)
}

func TestManagerIgnoresImportsOfNonScriptBundles(t *testing.T) {
	bm := buildMap(t,
		bundleFixture{"/index.html", []string{"/src/inline.js"}},
		bundleFixture{"/lib.js", []string{"/src/lib.js"}},
	)

	m := NewManager()
	m.Read("import {x} from './lib.js';", "inline.js")

	out, err := m.Process(bm)
	require.NoError(t, err)
	assert.Nil(t, entry(t, out, "/index.html").Header)
	assert.Nil(t, entry(t, out, "/lib.js").Footer)
}
