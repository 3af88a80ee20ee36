package reference

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tgreer/familysite/internal/domain/model"
)

// Kind discriminates the payable entity a payment reference points at.
type Kind string

const (
	KindUnrecognized Kind = "unrecognized"
	KindOrder        Kind = "order"
	KindDuesBatch    Kind = "dues_batch"
	KindDuesSingle   Kind = "dues_single"
	KindDonation     Kind = "donation"
)

// PaymentReference is the decoded form of the reference string attached to a
// processor transaction at payment-link creation time. Exactly one variant is
// populated; unknown formats decode to KindUnrecognized, never to an error,
// because payment links minted under old deploys can complete at any time.
type PaymentReference struct {
	Kind       Kind
	OrderID    int64
	BatchID    model.BatchID
	UserID     int64
	Year       int
	DonationID int64
	Raw        string
}

// Order builds a reference to a store order.
func Order(orderID int64) PaymentReference {
	return PaymentReference{Kind: KindOrder, OrderID: orderID, Raw: ForOrder(orderID)}
}

// DuesBatch builds a reference to a dues batch.
func DuesBatch(batchID model.BatchID) PaymentReference {
	return PaymentReference{Kind: KindDuesBatch, BatchID: batchID, Raw: ForBatch(batchID)}
}

// DuesSingle builds a reference in the legacy pre-batching single-payment form.
func DuesSingle(userID int64, year int) PaymentReference {
	return PaymentReference{Kind: KindDuesSingle, UserID: userID, Year: year, Raw: fmt.Sprintf("dues:%d:%d", userID, year)}
}

// Donation builds a reference to a donation.
func Donation(donationID int64) PaymentReference {
	return PaymentReference{Kind: KindDonation, DonationID: donationID, Raw: ForDonation(donationID)}
}

// ForOrder renders the reference string stored on new order payment links.
func ForOrder(orderID int64) string { return fmt.Sprintf("order:%d", orderID) }

// ForBatch renders the reference string stored on new dues-batch payment
// links. New links always use the short db: form.
func ForBatch(batchID model.BatchID) string { return fmt.Sprintf("db:%s", batchID) }

// ForDonation renders the reference string stored on new donation payment links.
func ForDonation(donationID int64) string { return fmt.Sprintf("donation:%d", donationID) }

// Resolve parses a raw reference string echoed back by the processor. It
// recognizes, in priority order:
//
//	order:<id>            store order
//	db:<batchId>          dues batch (current form)
//	dues-batch:<batchId>  dues batch (deprecated alias)
//	donation:<id>         donation
//	dues:<userId>:<year>  legacy single dues payment
//
// Anything else, including numeric components that fail to parse, yields a
// KindUnrecognized reference carrying the raw string.
func Resolve(raw string) PaymentReference {
	unrecognized := PaymentReference{Kind: KindUnrecognized, Raw: raw}

	switch {
	case strings.HasPrefix(raw, "order:"):
		id, err := strconv.ParseInt(raw[len("order:"):], 10, 64)
		if err != nil {
			return unrecognized
		}
		return PaymentReference{Kind: KindOrder, OrderID: id, Raw: raw}

	case strings.HasPrefix(raw, "db:"):
		return batchRef(raw, raw[len("db:"):])

	case strings.HasPrefix(raw, "dues-batch:"):
		return batchRef(raw, raw[len("dues-batch:"):])

	case strings.HasPrefix(raw, "donation:"):
		id, err := strconv.ParseInt(raw[len("donation:"):], 10, 64)
		if err != nil {
			return unrecognized
		}
		return PaymentReference{Kind: KindDonation, DonationID: id, Raw: raw}

	case strings.HasPrefix(raw, "dues:"):
		parts := strings.Split(raw[len("dues:"):], ":")
		if len(parts) != 2 {
			return unrecognized
		}
		userID, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			return unrecognized
		}
		year, err := strconv.Atoi(parts[1])
		if err != nil {
			return unrecognized
		}
		return PaymentReference{Kind: KindDuesSingle, UserID: userID, Year: year, Raw: raw}
	}

	return unrecognized
}

func batchRef(raw, token string) PaymentReference {
	if token == "" {
		return PaymentReference{Kind: KindUnrecognized, Raw: raw}
	}
	return PaymentReference{Kind: KindDuesBatch, BatchID: model.BatchID(token), Raw: raw}
}
