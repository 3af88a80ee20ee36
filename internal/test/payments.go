package test

// PaymentsFacadeStub aggregates the per-area stubs into the full facade
// surface the router expects.
type PaymentsFacadeStub struct {
	TokenParserStub
	ReconcileFacadeStub
	OrderFacadeStub
	DuesFacadeStub
	DonationFacadeStub
}
