package mediatypes

import "testing"

func TestGetFileType(t *testing.T) {
	tests := []struct {
		ext  string
		want FileType
	}{
		{".webm", FileTypeVideo},
		{".MP4", FileTypeVideo},
		{".png", FileTypeImage},
		{".GIF", FileTypeImage},
		{".svg", FileTypeImage},
		{".txt", FileTypeOther},
		{"", FileTypeOther},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			if got := GetFileType(tt.ext); got != tt.want {
				t.Errorf("GetFileType(%q) = %q, want %q", tt.ext, got, tt.want)
			}
		})
	}
}

func TestGetMimeType(t *testing.T) {
	tests := map[string]string{
		".webm": "video/webm",
		".JPG":  "image/jpeg",
		".webp": "image/webp",
		".bin":  "application/octet-stream",
	}
	for ext, want := range tests {
		if got := GetMimeType(ext); got != want {
			t.Errorf("GetMimeType(%q) = %q, want %q", ext, got, want)
		}
	}
}

func TestIsResizable(t *testing.T) {
	for ext, want := range map[string]bool{
		".png": true, ".jpeg": true, ".webp": true, ".gif": true,
		".svg": false, ".webm": false, "": false,
	} {
		if got := IsResizable(ext); got != want {
			t.Errorf("IsResizable(%q) = %v, want %v", ext, got, want)
		}
	}
}

func TestProxyFileType(t *testing.T) {
	tests := []struct {
		ext  string
		want FileType
	}{
		{".webm", FileTypeVideo},
		{".mp4", FileTypeVideo},
		{".PNG", FileTypeImage},
		{".jpg", FileTypeImage},
		{".jpeg", FileTypeImage},
		{".gif", FileTypeImage},
		// Served, but never marks a proxy path.
		{".webp", FileTypeOther},
		{".mov", FileTypeOther},
		{".html", FileTypeOther},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			if got := ProxyFileType(tt.ext); got != tt.want {
				t.Errorf("ProxyFileType(%q) = %q, want %q", tt.ext, got, tt.want)
			}
		})
	}
}

func TestIsMediaFile(t *testing.T) {
	if !IsMediaFile(".webm") || !IsMediaFile(".png") || IsMediaFile(".json") {
		t.Error("IsMediaFile misclassified extensions")
	}
}
