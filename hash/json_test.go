package hash

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

type device struct {
	Name    string   `json:"name"`
	Online  bool     `json:"online"`
	Reading float64  `json:"reading"`
	Tags    []string `json:"tags"`
}

func TestJSONMapperToHash(t *testing.T) {
	mapper := NewJSONMapper[device]()

	fields, err := mapper.ToHash(device{
		Name:    "sensor-a",
		Online:  true,
		Reading: 21.5,
		Tags:    []string{"kitchen", "temp"},
	})
	assert.NoError(t, err)

	assert.Equal(t, map[string][]byte{
		"name":    []byte(`"sensor-a"`),
		"online":  []byte(`true`),
		"reading": []byte(`21.5`),
		"tags":    []byte(`["kitchen","temp"]`),
	}, fields)
}

func TestJSONMapperRoundTrip(t *testing.T) {
	mapper := NewJSONMapper[device]()
	original := device{Name: "sensor-a", Online: true, Reading: 21.5, Tags: []string{"kitchen"}}

	fields, err := mapper.ToHash(original)
	assert.NoError(t, err)

	back, err := mapper.FromHash(fields)
	assert.NoError(t, err)
	assert.Equal(t, original, back)
}

func TestJSONMapperFromHashPartial(t *testing.T) {
	mapper := NewJSONMapper[device]()

	back, err := mapper.FromHash(map[string][]byte{"name": []byte(`"sensor-a"`)})
	assert.NoError(t, err)
	assert.Equal(t, device{Name: "sensor-a"}, back)
}

func TestJSONMapperNonObject(t *testing.T) {
	mapper := NewJSONMapper[int]()

	_, err := mapper.ToHash(42)
	assert.Error(t, err)
}

func TestJSONMapperMalformedField(t *testing.T) {
	mapper := NewJSONMapper[device]()

	_, err := mapper.FromHash(map[string][]byte{"reading": []byte(`not json`)})
	assert.Error(t, err)
}
