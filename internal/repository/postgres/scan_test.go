package postgres

import (
	"testing"
	"time"
)

func TestScanTime(t *testing.T) {
	tests := []struct {
		name    string
		src     interface{}
		want    time.Time
		wantNil bool
		wantErr bool
	}{
		{
			name: "driver native time",
			src:  time.Date(2025, 1, 1, 10, 30, 0, 0, time.UTC),
			want: time.Date(2025, 1, 1, 10, 30, 0, 0, time.UTC),
		},
		{
			name: "date text",
			src:  "2025-01-01",
			want: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "rfc3339 text",
			src:  "2025-06-01T12:00:00Z",
			want: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		},
		{
			name: "timestamp bytes",
			src:  []byte("2025-06-01 12:00:00"),
			want: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		},
		{
			name:    "null column",
			src:     nil,
			wantNil: true,
		},
		{
			name:    "truncated text errors instead of zeroing",
			src:     "2025-01",
			wantErr: true,
		},
		{
			name:    "unsupported type",
			src:     int64(42),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s scanTime
			err := s.Scan(tt.src)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Scan() error = nil, want parse failure")
				}
				return
			}
			if err != nil {
				t.Fatalf("Scan() error = %v", err)
			}
			if tt.wantNil {
				if s.Valid {
					t.Errorf("Valid = true, want false for null")
				}
				return
			}
			if !s.Valid || !s.Time.Equal(tt.want) {
				t.Errorf("scanned %v (valid=%v), want %v", s.Time, s.Valid, tt.want)
			}
		})
	}
}
