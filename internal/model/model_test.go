package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestValidateKind(t *testing.T) {
	for _, k := range []Kind{KindPull, KindIssue} {
		if err := ValidateKind(k); err != nil {
			t.Errorf("ValidateKind(%s) = %v", k, err)
		}
	}
	if err := ValidateKind(Kind("discussion")); err == nil {
		t.Error("ValidateKind(discussion) = nil, want error")
	}
	if err := ValidateKind(Kind("")); err == nil {
		t.Error("ValidateKind(\"\") = nil, want error")
	}
}

func TestIdentityJSONShape(t *testing.T) {
	resolved, err := json.Marshal(Resolved("alice"))
	if err != nil {
		t.Fatal(err)
	}
	// The unmapped marker must be absent for resolved identities so the
	// output stays unambiguous.
	if string(resolved) != `{"login":"alice"}` {
		t.Errorf("resolved identity = %s", resolved)
	}

	unresolved, err := json.Marshal(Unresolved("ghost"))
	if err != nil {
		t.Fatal(err)
	}
	if string(unresolved) != `{"login":"ghost","unmapped":true}` {
		t.Errorf("unresolved identity = %s", unresolved)
	}
}

func TestRecordMergeEvent(t *testing.T) {
	at := time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)
	rec := Record{
		Kind: KindPull,
		Events: []Event{
			{Kind: EventCommented, Actor: "bob"},
			{Kind: EventMerged, Actor: "maintainer", OccurredAt: at},
			{Kind: EventMerged, Actor: "other"},
		},
	}

	ev := rec.MergeEvent()
	if ev == nil {
		t.Fatal("MergeEvent() = nil")
	}
	if ev.Actor != "maintainer" || !ev.OccurredAt.Equal(at) {
		t.Errorf("MergeEvent() = %+v", ev)
	}

	unmerged := Record{Kind: KindPull, Events: []Event{{Kind: EventCommented}}}
	if unmerged.MergeEvent() != nil {
		t.Error("MergeEvent() on unmerged record != nil")
	}
}

func TestResolvedRecordMergeEvent(t *testing.T) {
	rec := ResolvedRecord{
		Kind: KindPull,
		Events: []ResolvedEvent{
			{Kind: EventReviewed},
			{Kind: EventMerged, Actor: &Identity{Login: "maintainer"}},
		},
	}

	ev := rec.MergeEvent()
	if ev == nil || ev.Actor == nil || ev.Actor.Login != "maintainer" {
		t.Errorf("MergeEvent() = %+v", ev)
	}
}

func TestResolvedEventActorOmitted(t *testing.T) {
	data, err := json.Marshal(ResolvedEvent{Kind: EventMerged, OccurredAt: time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)})
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if _, present := decoded["actor"]; present {
		t.Errorf("actorless event serialized an actor field: %s", data)
	}
	if decoded["event"] != EventMerged {
		t.Errorf("event field = %v", decoded["event"])
	}
}
