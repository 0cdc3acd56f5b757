package query

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/panbanda/cstq/pkg/node"
	"github.com/panbanda/cstq/pkg/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goSource = `package sample

func f(xs []int) {
	for _, x := range xs {
		if x > 0 {
			println(x)
		}
	}
}

func g() {}
`

const pySource = `def f(a, b):
    if a:
        pass
    elif b:
        x = 1
`

func parse(t *testing.T, lang parser.Language, src string) *parser.ParseResult {
	t.Helper()
	psr := parser.New()
	defer psr.Close()
	res, err := psr.Parse([]byte(src), lang, "sample")
	require.NoError(t, err)
	return res
}

func kinds(infos []NodeInfo) []string {
	out := make([]string, len(infos))
	for i, info := range infos {
		out[i] = info.Kind
	}
	return out
}

func TestTree(t *testing.T) {
	res := parse(t, parser.LangGo, goSource)

	all := Tree(res, false, -1)
	assert.Len(t, all, res.Tree.Len())
	assert.Equal(t, "source_file", all[0].Kind)

	named := Tree(res, true, -1)
	require.NotEmpty(t, named)
	for _, info := range named {
		assert.True(t, info.Named, info.Kind)
	}
	assert.Less(t, len(named), len(all))

	top := Tree(res, true, 1)
	assert.Equal(t, []string{"source_file", "package_clause", "function_declaration", "function_declaration"}, kinds(top))
	assert.Equal(t, []int{0, 1, 1, 1}, []int{top[0].Depth, top[1].Depth, top[2].Depth, top[3].Depth})
}

func TestFind(t *testing.T) {
	res := parse(t, parser.LangGo, goSource)

	tests := []struct {
		name  string
		kinds []string
		first bool
		want  []string
		lines []uint32
	}{
		{name: "all functions", kinds: []string{"function_declaration"}, want: []string{"function_declaration", "function_declaration"}, lines: []uint32{3, 11}},
		{name: "first function", kinds: []string{"function_declaration"}, first: true, want: []string{"function_declaration"}, lines: []uint32{3}},
		{name: "union in pre-order", kinds: []string{"if_statement", "for_statement"}, want: []string{"for_statement", "if_statement"}, lines: []uint32{4, 5}},
		{name: "anonymous keyword", kinds: []string{"func"}, want: []string{"func", "func"}, lines: []uint32{3, 11}},
		{name: "no match", kinds: []string{"return_statement"}, want: []string{}, lines: []uint32{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			infos, err := Find(res, tt.kinds, tt.first)
			require.NoError(t, err)
			assert.Equal(t, tt.want, kinds(infos))
			lines := make([]uint32, len(infos))
			for i, info := range infos {
				lines[i] = info.StartLine
			}
			assert.Equal(t, tt.lines, lines)
		})
	}

	_, err := Find(res, []string{"bogus"}, false)
	assert.ErrorContains(t, err, `unknown node kind "bogus"`)
}

func TestPath(t *testing.T) {
	res := parse(t, parser.LangGo, goSource)

	info, ok, err := Path(res, []string{"function_declaration", "identifier"})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "f", info.Text)

	info, ok, err = Path(res, nil)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "source_file", info.Kind)

	_, ok, err = Path(res, []string{"for_statement"})
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = Path(res, []string{"function_declaration", "bogus"})
	assert.Error(t, err)
}

func TestAncestors(t *testing.T) {
	res := parse(t, parser.LangGo, goSource)

	r, err := Ancestors(res, AncestorsRequest{Line: 6, Col: 4})
	require.NoError(t, err)
	assert.Equal(t, "identifier", r.Node.Kind)
	assert.Equal(t, "println", r.Node.Text)
	assert.Nil(t, r.Count)
	require.NotEmpty(t, r.Ancestors)
	assert.Equal(t, "source_file", r.Ancestors[len(r.Ancestors)-1].Kind)
	for i, a := range r.Ancestors {
		assert.Equal(t, i+1, a.Depth)
	}

	r, err = Ancestors(res, AncestorsRequest{Line: 6, Col: 4, Count: []string{"for_statement", "if_statement"}})
	require.NoError(t, err)
	require.NotNil(t, r.Count)
	assert.Equal(t, 2, *r.Count)

	r, err = Ancestors(res, AncestorsRequest{Line: 6, Col: 4, Count: []string{"for_statement", "if_statement"}, Stop: []string{"if_statement"}})
	require.NoError(t, err)
	assert.Equal(t, 0, *r.Count, "the stop kind is neither counted nor crossed")

	r, err = Ancestors(res, AncestorsRequest{Line: 4, Col: 2, Named: true})
	require.NoError(t, err)
	assert.Equal(t, "for_statement", r.Node.Kind, "the for keyword climbs to its named parent")
}

func TestAncestorsSkipsElseIf(t *testing.T) {
	res := parse(t, parser.LangPython, pySource)

	r, err := Ancestors(res, AncestorsRequest{Line: 5, Col: 9, Count: []string{"if_statement", "elif_clause"}})
	require.NoError(t, err)
	assert.Equal(t, "identifier", r.Node.Kind)
	assert.Equal(t, 1, *r.Count)
	assert.Contains(t, kinds(r.Ancestors), "elif_clause")
}

func TestAncestorsErrors(t *testing.T) {
	res := parse(t, parser.LangGo, goSource)

	_, err := Ancestors(res, AncestorsRequest{Line: 0, Col: 1})
	assert.Error(t, err)

	_, err = Ancestors(res, AncestorsRequest{Line: 500, Col: 1})
	assert.ErrorIs(t, err, ErrNoNode)

	_, err = Ancestors(res, AncestorsRequest{Line: 6, Col: 4, Count: []string{"bogus"}})
	assert.Error(t, err)
}

func TestDeepestAt(t *testing.T) {
	res := parse(t, parser.LangGo, goSource)

	tests := []struct {
		name string
		at   node.Point
		kind string
		ok   bool
	}{
		{name: "identifier", at: node.Point{Row: 5, Column: 3}, kind: "identifier", ok: true},
		{name: "keyword", at: node.Point{Row: 3, Column: 1}, kind: "for", ok: true},
		{name: "past end", at: node.Point{Row: 100, Column: 0}, ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, ok := DeepestAt(res.Root(), tt.at)
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.kind, n.Kind())
			}
		})
	}
}

func TestLine(t *testing.T) {
	info := NodeInfo{ID: 7, Kind: "identifier", Field: "name", Named: true, Depth: 2, StartLine: 3, StartCol: 6, EndLine: 3, EndCol: 7, Text: "f"}
	assert.Equal(t, `    name: identifier [3:6 - 3:7] #7  f`, info.Line())

	anon := NodeInfo{ID: 1, Kind: "(", Error: true, Missing: true, StartLine: 1, StartCol: 1, EndLine: 1, EndCol: 1}
	assert.Equal(t, `"(" [1:1 - 1:1] #1 ERROR MISSING`, anon.Line())
}

func TestSnippet(t *testing.T) {
	res := parse(t, parser.LangGo, goSource)
	fn, ok := res.Root().FirstOccurrence(res.Tree.Grammar().Kinds("function_declaration").Pred())
	require.True(t, ok)
	assert.Equal(t, "func f(xs []int) { ...", Snippet(fn))

	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "abc", truncate("abcdef", 3))
}

func TestSnippetCountsRunes(t *testing.T) {
	short := `x := "` + strings.Repeat("é", 40) + `"`
	require.Greater(t, len(short), 60)
	assert.Equal(t, short, truncate(short, 60), "under 60 runes is kept whole")

	long := strings.Repeat("é", 70)
	got := truncate(long, 60)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, 60, utf8.RuneCountInString(got))
	assert.Equal(t, strings.Repeat("é", 57)+"...", got)
	assert.Equal(t, "日本", truncate("日本語", 2))

	src := "package sample\n\nvar s = \"" + strings.Repeat("世", 70) + "\"\n"
	res := parse(t, parser.LangGo, src)
	decl, ok := res.Root().FirstOccurrence(res.Tree.Grammar().Kinds("var_declaration").Pred())
	require.True(t, ok)
	snip := Snippet(decl)
	assert.True(t, utf8.ValidString(snip))
	assert.Equal(t, "var s = \""+strings.Repeat("世", 48)+"...", snip)
}
