// Package governanceengine implements the condominium general-assembly
// governance engine inside the assembly-governance context.
//
// The module owns the meeting lifecycle (draft, completed), attendance and
// dual-majority quorum, statutory proxy caps, land-share weighted vote tallies
// and decision approval, and the official minutes text. Business rules live in
// domain packages; application use cases orchestrate them behind ports and
// emit governance events through the outbox.
package governanceengine
