// Package webhook receives Slack Events API deliveries on a single endpoint.
//
// Every POST is authenticated with the v0 signing scheme before its body is
// interpreted. Message events are handed to the pipeline and acknowledged
// immediately; extraction and the sink append happen in the background.
//
// # Security Model
//
// - HMAC-SHA256 over "v0:<timestamp>:<body>" compared in constant time
// - Requests older or newer than five minutes are rejected as replays
// - Body size limits enforced before verification
// - Failures always answer 403 "Invalid request" with no details
// - Request logs carry a BLAKE3 body fingerprint, never the body
//
// # Request Flow
//
//  1. HTTP POST arrives at /
//  2. Optional rate limit checked (429)
//  3. Body size checked (413 if too large)
//  4. Signature and timestamp verified (403 on failure)
//  5. Body classified: url_verification, message, or ignorable
//  6. Challenge echoed as text/plain, or message scheduled
//  7. 200 returned with an empty body
//
// # Responses
//
// - 200 OK: liveness (GET), challenge echo, or acknowledged event
// - 403 Forbidden: verification failed
// - 404 Not Found: any verb other than GET or POST
// - 413 Payload Too Large: body exceeds max_body_size
// - 429 Too Many Requests: rate_limit exceeded
//
// # Example Usage
//
//	cfg, err := webhook.FromGlobalConfig(globalCfg)
//	if err != nil {
//		return err
//	}
//	verifier := signature.NewVerifier(globalCfg.Slack.SigningSecret, logger)
//	server := webhook.New(cfg, verifier, pool, logger)
//	if err := server.Start(ctx); err != nil {
//		log.Fatal(err)
//	}
package webhook
