package media

import (
	"testing"

	"clipstudio/errs"
)

func TestParseDuration(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		want    float64
		wantErr bool
	}{
		{
			name: "valid",
			raw:  `{"format":{"duration":"12.345000"}}`,
			want: 12.345,
		},
		{
			name: "fractional",
			raw:  `{"format":{"duration":"1.03"}}`,
			want: 1.03,
		},
		{
			name:    "missing duration",
			raw:     `{"format":{}}`,
			wantErr: true,
		},
		{
			name:    "zero duration",
			raw:     `{"format":{"duration":"0.000000"}}`,
			wantErr: true,
		},
		{
			name:    "negative duration",
			raw:     `{"format":{"duration":"-2.5"}}`,
			wantErr: true,
		},
		{
			name:    "garbage duration",
			raw:     `{"format":{"duration":"N/A"}}`,
			wantErr: true,
		},
		{
			name:    "not json",
			raw:     `ffprobe exploded`,
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseDuration(tc.raw)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !errs.Is(err, errs.KindMetadata) {
					t.Fatalf("err kind = %q, want metadata", errs.KindOf(err))
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("duration = %v, want %v", got, tc.want)
			}
		})
	}
}
