package memory

import (
	"runtime/debug"
	"testing"
)

func restoreLimit(t *testing.T) {
	t.Helper()
	prev := debug.SetMemoryLimit(-1)
	t.Cleanup(func() { debug.SetMemoryLimit(prev) })
}

func TestConfigureNoLimit(t *testing.T) {
	t.Setenv("GOMEMLIMIT", "")
	restoreLimit(t)

	res := Configure(0, 0.85)
	if res.Configured || res.Source != "none" {
		t.Errorf("Configure(0) = %+v, want unconfigured", res)
	}
}

func TestConfigureFromLimit(t *testing.T) {
	t.Setenv("GOMEMLIMIT", "")
	restoreLimit(t)

	tests := []struct {
		name      string
		ratio     float64
		wantRatio float64
	}{
		{"explicit ratio", 0.5, 0.5},
		{"full ratio", 1, 1},
		{"zero ratio", 0, DefaultRatio},
		{"too large", 1.5, DefaultRatio},
	}

	const limit = 1 << 30
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Configure(limit, tt.ratio)
			if !res.Configured || res.Source != "memory_limit" {
				t.Fatalf("res = %+v, want configured from memory_limit", res)
			}
			if res.Ratio != tt.wantRatio {
				t.Errorf("Ratio = %g, want %g", res.Ratio, tt.wantRatio)
			}
			want := int64(float64(limit) * tt.wantRatio)
			if res.GoMemLimit != want {
				t.Errorf("GoMemLimit = %d, want %d", res.GoMemLimit, want)
			}
			if got := debug.SetMemoryLimit(-1); got != want {
				t.Errorf("runtime limit = %d, want %d", got, want)
			}
		})
	}
}

func TestConfigureEnvWins(t *testing.T) {
	t.Setenv("GOMEMLIMIT", "512MiB")
	restoreLimit(t)
	debug.SetMemoryLimit(512 << 20)

	res := Configure(1<<30, 0.5)
	if res.Source != "GOMEMLIMIT" {
		t.Errorf("Source = %q, want GOMEMLIMIT", res.Source)
	}
	if res.GoMemLimit != 512<<20 {
		t.Errorf("GoMemLimit = %d, want %d", res.GoMemLimit, 512<<20)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{512, "512 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{1 << 30, "1.0 GiB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.in); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
