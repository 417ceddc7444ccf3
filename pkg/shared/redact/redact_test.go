package redact

import (
	"strings"
	"testing"
)

func TestRedactURLMasksSensitiveParams(t *testing.T) {
	out := RedactURL("https://ads.example.com/imp?pid=5&token=secret123&sz=300x250")
	if strings.Contains(out, "secret123") {
		t.Fatalf("token leaked: %s", out)
	}
	if !strings.Contains(out, "pid=5") || !strings.Contains(out, "sz=300x250") {
		t.Fatalf("placement params must survive: %s", out)
	}
}

func TestRedactURLPassthrough(t *testing.T) {
	in := "https://ads.example.com/imp?pid=5"
	if out := RedactURL(in); out != in {
		t.Fatalf("clean URL must be returned unchanged: %s", out)
	}
	bad := "http://bad url\x7f"
	if out := RedactURL(bad); out != bad {
		t.Fatalf("unparseable URL must be returned unchanged: %s", out)
	}
}

func TestRedactJSON(t *testing.T) {
	out := RedactJSON(`{"event":"imp","access_token":"abc","nested":{"cookie":"c=1"}}`)
	if strings.Contains(out, "abc") || strings.Contains(out, "c=1") {
		t.Fatalf("sensitive values leaked: %s", out)
	}
	if RedactJSON("not json") != "not json" {
		t.Fatalf("non-JSON must be returned unchanged")
	}
}
