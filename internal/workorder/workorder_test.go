package workorder

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTitleText(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"eight digits", "BT12345678", true},
		{"seven digits", "BT1234567", false},
		{"fourteen digits lowercase", "bt12345678901234", true},
		{"embedded in noise", "N° BT20240001234 du jour", true},
		{"empty", "", false},
		{"at number only", "AT00099", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTitleText(tt.text))
		})
	}
}

func TestPickBTID(t *testing.T) {
	assert.Equal(t, "BT12345678901234", PickBTID("bt12345678901234"))
	assert.Equal(t, "BT20240001234", PickBTID("n° BT20240001234 suite"))
	assert.Equal(t, "", PickBTID("BT1234567"))
}

func TestPickATID(t *testing.T) {
	assert.Equal(t, "AT00099", PickATID("N° d'AT: at00099"))
	assert.Equal(t, "", PickATID("AT12"))
	assert.Equal(t, "", PickATID(""))
}
