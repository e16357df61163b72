package valuecounts

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestCount(t *testing.T) {
	data := []int{1, 2, 2, 3, 3, 3}
	expected := ValueCounts{1: 1, 2: 2, 3: 3}

	actual := Count(data)
	if !reflect.DeepEqual(expected, actual) {
		t.Errorf("expected %v, got %v", expected, actual)
	}
}

func TestToPairsIsSorted(t *testing.T) {
	vc := ValueCounts{10: 1, 2: 5, 7: 3}
	expected := []Pair{{2, 5}, {7, 3}, {10, 1}}

	actual := vc.ToPairs()
	if !reflect.DeepEqual(expected, actual) {
		t.Errorf("expected %v, got %v", expected, actual)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	original := Count([]int{5, 5, 5, 80, 80, 512})

	marshalled, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var restored ValueCounts
	if err := json.Unmarshal(marshalled, &restored); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if !reflect.DeepEqual(original, restored) {
		t.Errorf("round trip changed data: %v != %v", original, restored)
	}
}

func TestFromPairsDuplicateValue(t *testing.T) {
	if _, err := FromPairs([]Pair{{1, 2}, {1, 3}}); err == nil {
		t.Error("expected error for duplicate value, got nil")
	}
}

func TestEmptyMarshalsToEmptyArray(t *testing.T) {
	marshalled, err := json.Marshal(New())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(marshalled) != "[]" {
		t.Errorf("expected [], got %s", marshalled)
	}
}
