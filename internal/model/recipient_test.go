package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecipientDecodesNumericAndStringIDs(t *testing.T) {
	var got []Recipient
	data := `[{"id": 42, "name": "Jane Doe", "type": "u"},
	          {"id": "C1-G7", "name": "Group 7", "type": "g"}]`
	require.NoError(t, json.Unmarshal([]byte(data), &got))

	require.Len(t, got, 2)
	assert.Equal(t, Recipient{ID: "42", Name: "Jane Doe", Type: RecipientUser}, got[0])
	assert.Equal(t, Recipient{ID: "C1-G7", Name: "Group 7", Type: RecipientGroup}, got[1])
}

func TestRecipientEncodesUserIDsAsNumbers(t *testing.T) {
	b, err := json.Marshal([]Recipient{
		{ID: "42", Name: "Jane Doe", Type: RecipientUser},
		{ID: "123", Name: "Course", Type: RecipientCourse},
	})
	require.NoError(t, err)

	assert.JSONEq(t,
		`[{"id": 42, "name": "Jane Doe", "type": "u"},
		  {"id": "123", "name": "Course", "type": "c"}]`,
		string(b),
	)
}
