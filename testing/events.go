package photontesting

import (
	"fmt"

	testifysuite "github.com/stretchr/testify/suite"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/Chiplis/Photon-solana-contracts/modules/gov/types"
)

// ParseFingerprintFromEvents parses events emitted by an applied governance
// operation and returns the operation fingerprint.
func ParseFingerprintFromEvents(events sdk.Events) (string, error) {
	for _, ev := range events {
		if ev.Type != types.EventTypeGovOperation && ev.Type != types.EventTypeGovOperationNoop {
			continue
		}
		for _, attr := range ev.Attributes {
			if string(attr.Key) == types.AttributeKeyFingerprint {
				return string(attr.Value), nil
			}
		}
	}
	return "", fmt.Errorf("fingerprint event attribute not found")
}

// AssertEvents asserts that expected events are present in the actual events. An
// expected event matches when every one of its attributes is contained in an actual
// event of the same type.
func AssertEvents(
	suite *testifysuite.Suite,
	expected sdk.Events,
	actual sdk.Events,
) {
	foundEvents := make(map[int]bool)

	for i, expectedEvent := range expected {
		for _, actualEvent := range actual {
			if expectedEvent.Type != actualEvent.Type {
				continue
			}

			attributeMatch := true
			for _, expectedAttr := range expectedEvent.Attributes {
				// any expected attributes that are not contained in the actual events will cause this event
				// not to match
				attributeMatch = attributeMatch && containsAttribute(actualEvent, string(expectedAttr.Key), string(expectedAttr.Value))
			}

			if attributeMatch {
				foundEvents[i] = true
			}
		}
	}

	for i, expectedEvent := range expected {
		suite.Require().True(foundEvents[i], "event: %s was not found in events", expectedEvent.Type)
	}
}

func containsAttribute(event sdk.Event, key, value string) bool {
	for _, attr := range event.Attributes {
		if string(attr.Key) == key && string(attr.Value) == value {
			return true
		}
	}
	return false
}
