package service

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/iticket/helpdesk/internal/config"
)

func newUploadTestService(t *testing.T, maxSize int64) *UploadService {
	t.Helper()
	svc, err := NewUploadService(config.UploadConfig{
		Dir:           t.TempDir(),
		PublicBaseURL: "/uploads",
		MaxSizeBytes:  maxSize,
	})
	if err != nil {
		t.Fatalf("NewUploadService: %v", err)
	}
	return svc
}

func TestPrepareAcceptsAllowedExtensions(t *testing.T) {
	svc := newUploadTestService(t, 0)

	for _, name := range []string{"photo.png", "scan.JPG", "pic.jpeg", "doc.pdf", "report.DOCX"} {
		stored, err := svc.Prepare(name, 1024)
		if err != nil {
			t.Errorf("Prepare(%q): %v", name, err)
			continue
		}
		if stored.Name != name {
			t.Errorf("original name = %q, want %q", stored.Name, name)
		}
		ext := strings.ToLower(filepath.Ext(name))
		if !strings.HasSuffix(stored.StoredAs, ext) {
			t.Errorf("stored name %q should keep extension %q", stored.StoredAs, ext)
		}
		if stored.StoredAs == name {
			t.Errorf("stored name must be generated, got original %q", stored.StoredAs)
		}
		if !strings.HasPrefix(stored.PublicURL, "/uploads/") {
			t.Errorf("public URL = %q", stored.PublicURL)
		}
	}
}

func TestPreparePreservesAbsoluteBaseURL(t *testing.T) {
	svc, err := NewUploadService(config.UploadConfig{
		Dir:           t.TempDir(),
		PublicBaseURL: "https://cdn.example.com/uploads/",
	})
	if err != nil {
		t.Fatalf("NewUploadService: %v", err)
	}

	stored, err := svc.Prepare("photo.png", 1024)
	if err != nil {
		t.Fatal(err)
	}
	want := "https://cdn.example.com/uploads/" + stored.StoredAs
	if stored.PublicURL != want {
		t.Errorf("public URL = %q, want %q", stored.PublicURL, want)
	}
}

func TestPrepareRejectsDisallowedExtensions(t *testing.T) {
	svc := newUploadTestService(t, 0)

	for _, name := range []string{"run.exe", "script.sh", "archive.zip", "page.html", "noext"} {
		if _, err := svc.Prepare(name, 1024); err == nil {
			t.Errorf("Prepare(%q) should be rejected", name)
		}
	}
}

func TestPrepareEnforcesSizeLimit(t *testing.T) {
	svc := newUploadTestService(t, 2048)

	if _, err := svc.Prepare("photo.png", 2048); err != nil {
		t.Errorf("size at limit should pass: %v", err)
	}
	if _, err := svc.Prepare("photo.png", 2049); err == nil {
		t.Error("size over limit should be rejected")
	}
}

func TestPrepareGeneratesUniqueNames(t *testing.T) {
	svc := newUploadTestService(t, 0)

	first, err := svc.Prepare("photo.png", 100)
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.Prepare("photo.png", 100)
	if err != nil {
		t.Fatal(err)
	}
	if first.StoredAs == second.StoredAs {
		t.Error("stored names must be unique per upload")
	}
}
