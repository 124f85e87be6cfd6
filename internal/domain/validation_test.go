package domain_test

import (
	"errors"
	"strings"
	"testing"

	"music-room/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestValidateRoomCreate_Valid(t *testing.T) {
	cases := map[string]domain.RoomCreate{
		"name only":          {Name: "Jazz Night"},
		"name at max length": {Name: strings.Repeat("a", 100)},
		"all fields":         {Name: "Indie", Description: strPtr("indie rock"), Genre: strPtr("Indie Rock")},
		"max description":    {Name: "x", Description: strPtr(strings.Repeat("d", 500))},
		"multibyte name":     {Name: strings.Repeat("音", 100)},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			assert.NoError(t, domain.ValidateRoomCreate(in))
		})
	}
}

func TestValidateRoomCreate_EmptyName(t *testing.T) {
	err := domain.ValidateRoomCreate(domain.RoomCreate{Name: ""})
	require.Error(t, err)

	var verrs domain.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	require.Len(t, verrs, 1)
	assert.Equal(t, "name", verrs[0].Field)
	assert.Equal(t, "field is required", verrs[0].Message)
}

func TestValidateRoomCreate_TooLong(t *testing.T) {
	err := domain.ValidateRoomCreate(domain.RoomCreate{
		Name:        strings.Repeat("a", 101),
		Description: strPtr(strings.Repeat("d", 501)),
	})
	require.Error(t, err)

	var verrs domain.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	fields := map[string]string{}
	for _, fe := range verrs {
		fields[fe.Field] = fe.Message
	}
	assert.Equal(t, "must be at most 100 characters", fields["name"])
	assert.Equal(t, "must be at most 500 characters", fields["description"])
	assert.Contains(t, err.Error(), "name: must be at most 100 characters")
}

func TestRoomCreate_Public(t *testing.T) {
	f := false
	assert.True(t, domain.RoomCreate{}.Public())
	assert.False(t, domain.RoomCreate{IsPublic: &f}.Public())
}
