// Package guard implements a software mobile authenticator for the
// marketplace: login codes and signed accept/deny of pending confirmations.
//
// An Authenticator holds the account's shared and identity secrets and talks
// to the marketplace through a Service. Transport, sessions and cookies are
// the Service's concern; the Authenticator only supplies signatures, device
// id and authoritative time.
//
// # Example
//
//	sync := clock.NewSynchronizer(service) // one per process
//
//	auth, err := guard.NewAuthenticator(guard.Config{
//	    SharedSecret:   "c2hhcmVkc2VjcmV0c2hhcmVkc2VjcmV0",
//	    IdentitySecret: "aWRlbnRpdHlzZWNyZXRpZGVudGl0eQ==",
//	    DeviceID:       "android:2b6f0cc9-04b4-8d24-ef0a-2e6f5e4d3c2b",
//	    Service:        service,
//	    Clock:          sync,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer auth.Close()
//
//	code, err := auth.GenerateToken(ctx)
//
//	pending, err := auth.ListConfirmations(ctx)
//	for _, c := range pending.Sorted() {
//	    ok, err := auth.ResolveConfirmation(ctx, c, true)
//	    ...
//	}
//
// # Clock
//
// Every operation needs the remote service's time. Share a single
// clock.Synchronizer across all authenticators in a process so the offset is
// fetched once.
//
// # Failures
//
// Operations never retry. A zero time or missing signature aborts before any
// remote call with ErrTimeUnavailable or ErrSignatureUnavailable; remote
// errors are returned wrapped, and a remote refusal to resolve a
// confirmation is reported as false with a nil error.
//
// # Thread Safety
//
// The Authenticator type is safe for concurrent use.
package guard
