package cloudinary

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestPublicIDSanitisesName(t *testing.T) {
	id := PublicID("Kazakh map (1).png")
	require.True(t, strings.HasPrefix(id, "Kazakh-map--1-"), id)
	require.NotEqual(t, id, PublicID("Kazakh map (1).png"))
}

func TestPublicIDFallsBackForEmptyNames(t *testing.T) {
	require.True(t, strings.HasPrefix(PublicID("???.pdf"), "material-"))
}

func TestNewRequiresCredentials(t *testing.T) {
	_, err := New(Config{CloudName: "demo"}, zerolog.Nop())
	require.Error(t, err)
}
