// Package stampcard provides an embeddable loyalty stamp-card engine for Go
// applications.
//
// Stampcard is designed as a library, not a service. Import it directly into
// the application that drives your staff and customer screens. It provides:
//
//   - Delta-based stamp accrual: every 10 stamps earn one redeemable reward
//   - Reward redemption with strict business-rule checks
//   - A total QR payload parser that degrades unknown codes to best-effort scans
//   - A per-device scan session with duplicate-frame suppression and an
//     explicit stamp-quantity confirmation gate
//   - Lost-update protection via versioned compare-and-swap card writes
//   - Pluggable storage (memory, MongoDB, PostgreSQL, SQLite)
//
// # Quick Start
//
// Create an engine with your preferred store:
//
//	import (
//	    "github.com/xraph/stampcard"
//	    "github.com/xraph/stampcard/store/memory"
//	)
//
//	eng := stampcard.New(memory.New())
//
//	if err := eng.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer eng.Stop()
//
// # Core Concepts
//
// Cards track one customer's progress at one cafe:
//
//	c, err := eng.AddStamps(ctx, customerID, cafeUserID, 1)
//	// c.CurrentStamps, c.AvailableRewards updated by delta arithmetic
//
// Sessions process operator scans:
//
//	sess := eng.NewSession(cafeUserID)
//	res, err := sess.HandleScan(ctx, rawQRPayload)
//	if err == nil && res.AwaitingConfirmation {
//	    res, err = sess.ConfirmStamps(ctx, 3)
//	}
//
// Customers redeem by presenting a redemption code and watching for the
// operator to process it:
//
//	payload, _ := eng.RedemptionPayload(c)
//	go eng.WatchRedemption(ctx, c.ID, func(updated *card.Card) {
//	    // reward was redeemed by the cafe
//	})
//
// # Consistency
//
// Every card mutation is a read-modify-write finished by a compare-and-swap
// on the card's version: two devices stamping the same card at once cannot
// silently lose an update. The losing writer re-reads and reapplies its
// delta.
//
// # TypeID
//
// Entities minted by the engine use TypeID for globally unique, type-safe
// identifiers:
//
//	card_01h2xcejqtf2nbrexx3vqjhp41  // Card ID
//	cust_01h2xcejqtf2nbrexx3vqjhp41  // Customer ID
//
// Card identifiers arriving from scanned payloads are kept as opaque strings.
package stampcard
