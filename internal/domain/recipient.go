package domain

import "strings"

type RecipientKind string

const (
	RecipientBroker               RecipientKind = "broker"
	RecipientAllBrokers           RecipientKind = "all_brokers"
	RecipientAllSubscribedBrokers RecipientKind = "all_subscribed_brokers"
)

const (
	LabelAllBrokers           = "All Brokers"
	LabelAllSubscribedBrokers = "All Subscribed Brokers"
)

// Recipient addresses a notification either to one broker or to one of the
// broadcast groups. Broker is only meaningful for RecipientBroker.
type Recipient struct {
	Kind   RecipientKind
	Broker string
}

func Individual(broker string) Recipient {
	return Recipient{Kind: RecipientBroker, Broker: broker}
}

func AllBrokers() Recipient {
	return Recipient{Kind: RecipientAllBrokers}
}

func AllSubscribedBrokers() Recipient {
	return Recipient{Kind: RecipientAllSubscribedBrokers}
}

func NewRecipient(kind, broker string) (Recipient, error) {
	r := Recipient{Kind: RecipientKind(strings.TrimSpace(kind)), Broker: strings.TrimSpace(broker)}
	if err := r.Validate(); err != nil {
		return Recipient{}, err
	}
	if r.IsBroadcast() {
		r.Broker = ""
	}
	return r, nil
}

// Validate reports a missing or malformed recipient. The zero value is
// treated as an omitted recipient.
func (r Recipient) Validate() error {
	switch r.Kind {
	case RecipientBroker:
		if strings.TrimSpace(r.Broker) == "" {
			return &ValidationError{Field: "recipient.broker", Reason: "is required for a broker recipient"}
		}
		return nil
	case RecipientAllBrokers, RecipientAllSubscribedBrokers:
		return nil
	case "":
		return &ValidationError{Field: "recipient", Reason: "is required"}
	default:
		return &ValidationError{Field: "recipient.kind", Reason: "must be one of: broker, all_brokers, all_subscribed_brokers"}
	}
}

func (r Recipient) IsBroadcast() bool {
	return r.Kind == RecipientAllBrokers || r.Kind == RecipientAllSubscribedBrokers
}

// Label is the stored display value of the recipient.
func (r Recipient) Label() string {
	switch r.Kind {
	case RecipientAllBrokers:
		return LabelAllBrokers
	case RecipientAllSubscribedBrokers:
		return LabelAllSubscribedBrokers
	default:
		return r.Broker
	}
}

// PersonalBroker is the value of the indexed inbox field, empty for broadcasts.
func (r Recipient) PersonalBroker() string {
	if r.Kind == RecipientBroker {
		return r.Broker
	}
	return ""
}
