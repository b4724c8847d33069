package testkit

import (
	"testing"

	"cbrace/internal/format"
)

func TestCheckFormatInvariants(t *testing.T) {
	strip := format.Options{StripComments: true}
	tests := []struct {
		name    string
		in      []string
		res     format.Result
		opts    format.Options
		wantErr bool
	}{
		{
			name: "merge",
			in:   []string{"if (x)", "{"},
			res:  format.Result{Lines: []string{"if (x) {"}, Stats: format.Stats{Merges: 1}},
		},
		{
			name:    "lost line",
			in:      []string{"a;", "b;"},
			res:     format.Result{Lines: []string{"a;"}},
			wantErr: true,
		},
		{
			name:    "comment left",
			in:      []string{"a; // c"},
			res:     format.Result{Lines: []string{"a; // c"}},
			opts:    strip,
			wantErr: true,
		},
		{
			name: "removed block",
			in:   []string{"/* a", "b */", "int y;"},
			res:  format.Result{Lines: []string{"int y;"}, Stats: format.Stats{RemovedLines: 2}},
			opts: strip,
		},
		{
			name:    "changed without merges",
			in:      []string{"int x;"},
			res:     format.Result{Lines: []string{"int y;"}},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckFormatInvariants(tt.in, tt.res, tt.opts)
			if (err != nil) != tt.wantErr {
				t.Errorf("CheckFormatInvariants() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
