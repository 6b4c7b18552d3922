package gitlab

import (
	"testing"

	gwerrors "github.com/matzehuels/composer-gateway/pkg/errors"
)

func TestNumericID(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"gid://gitlab/Project/42", 42, false},
		{"gid://gitlab/Project/0", 0, false},
		{"GID://GitLab/project/7", 7, false},
		{"gid://gitlab/Project/9223372036854775807", 9223372036854775807, false},
		{"not-a-gid", 0, true},
		{"", 0, true},
		{"gid://gitlab/Group/42", 0, true},
		{"gid://gitlab/Project/", 0, true},
		{"gid://gitlab/Project/42/", 0, true},
		{"gid://gitlab/Project/-1", 0, true},
		{" gid://gitlab/Project/42", 0, true},
		{"gid://gitlab/Project/99999999999999999999", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NumericID(tt.in)
			if tt.wantErr {
				if !gwerrors.Is(err, gwerrors.ErrCodeInvalidGlobalID) {
					t.Fatalf("NumericID(%q) error = %v, want INVALID_GLOBAL_ID", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NumericID(%q) error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("NumericID(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestProjectNumericID(t *testing.T) {
	p := Project{ID: "gid://gitlab/Project/1234"}
	id, err := p.NumericID()
	if err != nil || id != 1234 {
		t.Errorf("NumericID() = %d, %v", id, err)
	}
}
