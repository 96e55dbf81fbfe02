// Package debate runs the multi-round re-evaluation protocol triggered
// when reviewer agents disagree sharply or report high severity.
//
// Each round, every agent is re-invoked with a prompt embedding the other
// agents' opinions. Consensus is reached when all successful severities
// are identical or within one rank (the higher one wins). Without
// consensus after the configured rounds, a weighted vote over severity
// ranks decides, defaulting to MEDIUM when no weight is available.
package debate
