package storage

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
)

func TestSponsorLogoKey(t *testing.T) {
	key, err := SponsorLogoKey(12, "image/png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(key, "sponsors/12/logo-") || !strings.HasSuffix(key, ".png") {
		t.Fatalf("unexpected key %q", key)
	}

	other, _ := SponsorLogoKey(12, "image/png")
	if other == key {
		t.Fatal("keys should be unique per upload")
	}

	if _, err := SponsorLogoKey(12, "application/pdf"); !errors.Is(err, ErrUnsupportedContentType) {
		t.Fatalf("expected ErrUnsupportedContentType, got %v", err)
	}
}

func TestPublicURL(t *testing.T) {
	tests := []struct {
		base string
		key  string
		want string
	}{
		{"https://cdn.example.com", "sponsors/1/logo.png", "https://cdn.example.com/sponsors/1/logo.png"},
		{"https://cdn.example.com/", "/sponsors/1/logo.png", "https://cdn.example.com/sponsors/1/logo.png"},
		{"https://cdn.example.com/assets", "sponsors/1/logo.png", "https://cdn.example.com/assets/sponsors/1/logo.png"},
		{"https://cdn.example.com", "", ""},
	}
	for _, tt := range tests {
		base, err := url.Parse(tt.base)
		if err != nil {
			t.Fatalf("parse %q: %v", tt.base, err)
		}
		if got := publicURL(base, tt.key); got != tt.want {
			t.Errorf("publicURL(%q, %q) = %q, want %q", tt.base, tt.key, got, tt.want)
		}
	}
}

func TestNewCloudflareR2UploaderValidatesConfig(t *testing.T) {
	if _, err := NewCloudflareR2Uploader(context.Background(), CloudflareR2UploaderConfig{AccountID: "acc"}); err == nil {
		t.Fatal("expected error for incomplete config")
	}

	cfg := CloudflareR2UploaderConfig{
		AccountID:       "acc",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		BucketName:      "logos",
		PublicBaseURL:   "not a url",
	}
	if _, err := NewCloudflareR2Uploader(context.Background(), cfg); err == nil {
		t.Fatal("expected error for invalid public base url")
	}

	cfg.PublicBaseURL = "https://cdn.example.com"
	u, err := NewCloudflareR2Uploader(context.Background(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := u.GetPublicURL("sponsors/1/logo.png"); got != "https://cdn.example.com/sponsors/1/logo.png" {
		t.Fatalf("GetPublicURL() = %q", got)
	}
}
