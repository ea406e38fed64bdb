package domain

import "testing"

func TestChildThreadID(t *testing.T) {
	tests := []struct {
		name   string
		parent string
		worker string
		want   string
	}{
		{"normal", "sess-42", "mycareer", "sess-42:mycareer"},
		{"other worker", "sess-42", "jd_composer", "sess-42:jd_composer"},
		{"ephemeral parent", "", "mycareer", ""},
		{"nested", "sess-42:mycareer", "helper", "sess-42:mycareer:helper"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ChildThreadID(tt.parent, tt.worker); got != tt.want {
				t.Errorf("ChildThreadID(%q, %q) = %q, want %q", tt.parent, tt.worker, got, tt.want)
			}
		})
	}
}

func TestChildThreadIDDistinctWorkers(t *testing.T) {
	a := ChildThreadID("sess-1", "mycareer")
	b := ChildThreadID("sess-1", "jd_composer")
	if a == b {
		t.Fatalf("expected distinct namespaces, both got %q", a)
	}
	if a == "sess-1" || b == "sess-1" {
		t.Fatal("child namespace must not collide with the parent thread")
	}
}
