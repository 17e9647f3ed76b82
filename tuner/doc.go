// Package tuner turns capture frames into musical tuning readings.
//
// A Tuner runs each frame through the time-domain pitch estimator,
// discards estimates outside the instrument band, and maps the rest to
// the nearest note of the configured reference pitch. Temperament
// offsets are applied on top of the raw equal-tempered deviation, so a
// string tuned to Werckmeister III reads zero when it sits on the
// tempered target rather than the equal-tempered one.
//
// Settings may be swapped while frames are flowing. Process is meant
// for one capture goroutine; Apply, Settings, and Latest are safe to
// call from others.
//
// Minimal usage against a prerecorded buffer:
//
//	t, err := tuner.New(tuner.Config{}, tuner.DefaultSettings())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	src, err := tuner.NewSliceSource(samples, 44100, 2048)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	err = t.Run(ctx, src, func(u tuner.Update) {
//		if u.OK {
//			fmt.Println(u.Reading)
//		}
//	})
package tuner
