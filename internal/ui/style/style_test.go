package style_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/sift/internal/core/domain"
	"go.trai.ch/sift/internal/ui/style"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		status domain.DocumentStatus
		icon   string
	}{
		{domain.StatusOK, style.Check},
		{domain.StatusParseFailed, style.Cross},
		{domain.StatusAnalysisFailed, style.Cross},
		{domain.StatusUnavailable, style.Circle},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			icon, _ := style.Status(tt.status)
			assert.Equal(t, tt.icon, icon)
		})
	}
}

func TestCategory(t *testing.T) {
	assert.Equal(t, style.Iris, style.Category("keyword"))
	assert.Equal(t, style.Mist, style.Category("unknown"))
}
