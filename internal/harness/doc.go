// Package harness runs YAML conformance scenarios against a fresh store.
//
// A scenario is a sequence of import batches and listing queries, each with
// an optional expectation, followed by assertions on the final state. Every
// step appends one event to a trace, and the trace can be compared against
// a golden file.
//
// # Scenario Format
//
//	name: scenario_name
//	description: "What this scenario checks"
//	seed: true                # start from the example airdrops
//	steps:
//	  - import:
//	      - project: { id: p1, name: P1, chain: Solana }
//	        airdrop: { id: a1, project_id: p1, title: S1, status: live }
//	        risk: { sybil_risk: 20 }
//	    expect: { outcome: ok, count: 1 }
//	  - list: { chain: Solana, sort: riskAsc }
//	    expect: { ids: [a1, ad_sol_xyz_s1] }
//	assertions:
//	  - type: row
//	    airdrop: a1
//	    expect: { risk_score: 30, status: live }
//	  - type: counts
//	    expect: { projects: 4, airdrops: 4, risk_factors: 4 }
//	  - type: absent
//	    airdrop: never_written
//
// # Assertion Types
//
//   - row: the listed row for an airdrop matches the expected fields (subset)
//   - counts: table row counts match exactly
//   - absent: the airdrop is not listed
//
// # Deterministic Testing
//
// Every scenario runs in its own in-memory database with sequential batch
// ids (batch-000001, batch-000002, ...), so traces are identical across
// runs.
package harness
