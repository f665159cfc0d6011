// Package closer acquires several resources in one scope and guarantees
// that every acquired resource is closed exactly once, newest first, on
// every exit path.
//
// When both the scope body and a close fail, exactly one error is returned.
// The body (or acquisition) error stays primary; close failures are attached
// to it as suppressed errors, each tagged with the hint of the clause that
// produced the resource. When the body succeeds, the first close failure
// becomes primary and later failures are suppressed on it.
//
//	err := closer.Run(ctx, []closer.Clause{
//		{Hint: "in", Acquire: func(ctx context.Context, _ closer.Bindings) (any, error) {
//			return os.Open("in.txt")
//		}},
//		{Hint: "out", Acquire: func(ctx context.Context, _ closer.Bindings) (any, error) {
//			return os.Create("out.txt")
//		}},
//	}, func(ctx context.Context, b closer.Bindings) error {
//		in, _ := closer.Lookup[*os.File](b, "in")
//		out, _ := closer.Lookup[*os.File](b, "out")
//		_, err := io.Copy(out, in)
//		return err
//	})
//
// A resource built by composing two sub-resources inside one close function
// does not get acquisition-failure cleanup for its first half. Acquire each
// sub-resource in its own clause instead.
//
// A Scope is not safe for concurrent use.
package closer
