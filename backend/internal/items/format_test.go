package items_test

import (
	"testing"

	"github.com/hijiri0404/cdk-learning-samples/backend/internal/items"
	"github.com/stretchr/testify/assert"
)

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2025-03-14T09:26:53.000000Z", "2025年03月14日 09:26:53"},
		{"2025-03-14T09:26:53+09:00", "2025年03月14日 09:26:53"},
		{"2025-03-14T09:26:53.123456", "2025年03月14日 09:26:53"},
		{"2025-03-14", "2025年03月14日 00:00:00"},
		{"yesterday", "yesterday"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, items.FormatTimestamp(tt.in))
		})
	}
}

func TestFormat_DoesNotModifyInput(t *testing.T) {
	item := items.Item{"id": "a", "created_at": "2025-03-14", "updated_at": 42}

	formatted := items.Format(item)

	assert.Equal(t, "2025年03月14日 00:00:00", formatted["created_at_display"])
	assert.NotContains(t, formatted, "updated_at_display")
	assert.NotContains(t, item, "created_at_display")
}
