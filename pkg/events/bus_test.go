package events

import (
	"context"
	"errors"
	"testing"
	"time"
)

func moderatedEvent(adID string) AdvertisementModerated {
	return AdvertisementModerated{
		Base:         Base{Ts: time.Now().UTC(), AdID: adID},
		ModerationID: "m-1",
		ModeratorID:  "mod-1",
		IsApproved:   true,
	}
}

func TestBusDeliversToMatchingSubscribers(t *testing.T) {
	bus := NewBus(nil)

	var moderated, submitted, all int
	bus.Subscribe("moderated", TypeIs(TypeModerated), func(context.Context, Event) error {
		moderated++
		return nil
	})
	bus.Subscribe("submitted", TypeIs(TypeSubmitted), func(context.Context, Event) error {
		submitted++
		return nil
	})
	bus.Subscribe("all", Any, func(context.Context, Event) error {
		all++
		return nil
	})

	bus.Publish(context.Background(), moderatedEvent("ad-1"))

	if moderated != 1 {
		t.Errorf("moderated handler ran %d times, want 1", moderated)
	}
	if submitted != 0 {
		t.Errorf("submitted handler ran %d times, want 0", submitted)
	}
	if all != 1 {
		t.Errorf("catch-all handler ran %d times, want 1", all)
	}
}

func TestBusSwallowsHandlerErrors(t *testing.T) {
	bus := NewBus(nil)

	var after bool
	bus.Subscribe("failing", Any, func(context.Context, Event) error {
		return errors.New("boom")
	})
	bus.Subscribe("after", Any, func(context.Context, Event) error {
		after = true
		return nil
	})

	// must not panic or abort the remaining deliveries
	bus.Publish(context.Background(), moderatedEvent("ad-1"))

	if !after {
		t.Error("a failing handler stopped later deliveries")
	}
}

func TestBusRecoversHandlerPanics(t *testing.T) {
	bus := NewBus(nil)

	bus.Subscribe("panicking", Any, func(context.Context, Event) error {
		panic("boom")
	})

	bus.Publish(context.Background(), moderatedEvent("ad-1"))
}

func TestEventPayloads(t *testing.T) {
	e := moderatedEvent("ad-9")
	data, err := e.MarshalData()
	if err != nil {
		t.Fatalf("MarshalData: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("empty payload")
	}
	if e.AdvertisementID() != "ad-9" {
		t.Errorf("advertisement id = %q", e.AdvertisementID())
	}
}
