package mindmap

import (
	"reflect"
	"testing"
)

func TestFilter_CaseInsensitiveContextMatch(t *testing.T) {
	got := Filter([]string{"Eco Toys", "eco toys", "New Idea"}, []string{"Eco Toys"})
	want := []string{"New Idea"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Filter() = %v, want %v", got, want)
	}
}

func TestFilter_IntraBatchFirstWins(t *testing.T) {
	got := Filter([]string{"Subscriptions", "Ads", "subscriptions "}, nil)
	want := []string{"Subscriptions", "Ads"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Filter() = %v, want %v", got, want)
	}
}

func TestFilter_TrimsAndDropsBlanks(t *testing.T) {
	got := Filter([]string{"  Local Sourcing  ", "", "   "}, nil)
	want := []string{"Local Sourcing"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Filter() = %v, want %v", got, want)
	}
}

func TestFilter_AllRemoved(t *testing.T) {
	got := Filter([]string{"A", "B"}, []string{"a", "b"})
	if len(got) != 0 {
		t.Errorf("Expected empty result, got %v", got)
	}
}

func TestFilter_NoFuzzyMatching(t *testing.T) {
	got := Filter([]string{"Eco Toy"}, []string{"Eco Toys"})
	if len(got) != 1 {
		t.Errorf("Near-matches must survive exact-string filtering, got %v", got)
	}
}
