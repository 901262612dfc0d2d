// Package chat runs a retrieval-grounded question loop. Each question is
// matched against the vector index and the retrieved chunks are folded into
// the model prompt; questions with no matches go to the model bare. Answers
// drawn from files whose index entry is stale are flagged to the user.
package chat
