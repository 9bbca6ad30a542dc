package analyzer

import (
	"testing"

	"github.com/praxos/carrion/pkg/models"
)

func TestApplyPenalties(t *testing.T) {
	tests := []struct {
		name string
		def  models.Definition
		fctx *fileContext
		want int
	}{
		{
			name: "public function full confidence",
			def:  models.Definition{SimpleName: "process", Kind: models.KindFunction, Line: 3},
			want: 100,
		},
		{
			name: "suppression marker wins over everything",
			def:  models.Definition{SimpleName: "process", Kind: models.KindFunction, Line: 3},
			fctx: &fileContext{ignoredLines: map[uint32]bool{3: true}},
			want: 0,
		},
		{
			name: "test file zeroes all definitions",
			def:  models.Definition{SimpleName: "helper", Kind: models.KindFunction, Line: 3},
			fctx: &fileContext{isTestFile: true},
			want: 0,
		},
		{
			name: "test line zeroes the definition",
			def:  models.Definition{SimpleName: "helper", Kind: models.KindFunction, Line: 7},
			fctx: &fileContext{testLines: map[uint32]bool{7: true}},
			want: 0,
		},
		{
			name: "framework line caps low",
			def:  models.Definition{SimpleName: "index", Kind: models.KindFunction, Line: 5},
			fctx: &fileContext{frameworkLines: map[uint32]bool{5: true}},
			want: 20,
		},
		{
			name: "framework plus private floors at zero",
			def:  models.Definition{SimpleName: "_index", Kind: models.KindFunction, Line: 5},
			fctx: &fileContext{frameworkLines: map[uint32]bool{5: true}},
			want: 0,
		},
		{
			name: "private symbol penalized",
			def:  models.Definition{SimpleName: "_quiet", Kind: models.KindFunction, Line: 3},
			want: 60,
		},
		{
			name: "init function penalized",
			def:  models.Definition{SimpleName: "setup", Kind: models.KindFunction, Line: 3, InInit: true},
			want: 80,
		},
		{
			name: "init variable not penalized",
			def:  models.Definition{SimpleName: "VERSION", Kind: models.KindVariable, Line: 1, InInit: true},
			want: 100,
		},
		{
			name: "private init class stacks penalties",
			def:  models.Definition{SimpleName: "_Impl", Kind: models.KindClass, Line: 3, InInit: true},
			want: 40,
		},
		{
			name: "dunder always zero",
			def:  models.Definition{SimpleName: "__call__", Kind: models.KindMethod, Line: 3},
			want: 0,
		},
		{
			name: "throwaway variable zero",
			def:  models.Definition{SimpleName: "_", Kind: models.KindVariable, Line: 3},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := applyPenalties(&tt.def, tt.fctx); got != tt.want {
				t.Errorf("applyPenalties() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestIgnoredLines(t *testing.T) {
	source := []byte("x = 1\ny = 2  # pragma: no carrion\nz = 3\n")
	marked := ignoredLines(source)

	if !marked[2] {
		t.Error("line 2 carries the marker")
	}
	if marked[1] || marked[3] {
		t.Errorf("unmarked lines flagged: %v", marked)
	}

	if got := ignoredLines([]byte("clean = True\n")); got != nil {
		t.Errorf("clean source returned %v, want nil", got)
	}
}
