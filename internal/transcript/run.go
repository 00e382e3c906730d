package transcript

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/set-night/avquote/internal/domain"
)

// Source yields reply fragments and io.EOF at the end of the reply.
type Source interface {
	Recv() (string, error)
}

// Run feeds src into r until the reply completes. Outcomes:
//   - success: the finalized message (nil for an empty reply) and a nil error;
//   - ctx canceled: the reply is aborted, nothing is appended, ctx.Err() is returned;
//   - body ended without [DONE]: the reply is aborted, nothing is appended, ErrTruncated is returned;
//   - any other failure: the apology message and an error wrapping domain.ErrUpstream.
//
// onPartial, when set, receives the accumulated text after every fragment.
func Run(ctx context.Context, r *Reducer, src Source, onPartial func(string)) (*domain.ChatMessage, error) {
	for {
		frag, err := src.Recv()
		if errors.Is(err, io.EOF) {
			return r.OnDone(ctx)
		}
		if ctx.Err() != nil {
			r.Abort()
			return nil, ctx.Err()
		}
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, ErrTruncated) {
				r.Abort()
				return nil, err
			}
			msg, ferr := r.OnError(err)
			if ferr != nil {
				return nil, ferr
			}
			return &msg, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
		}

		partial, err := r.OnFragment(frag)
		if err != nil {
			return nil, err
		}
		if onPartial != nil {
			onPartial(partial)
		}
	}
}
