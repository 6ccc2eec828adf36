// Package recorder implements the recording state machine
// (idle -> recording -> stopping -> idle) on top of a capture.Encoder.
//
// Stop reconciles the encoder's asynchronous flush with a blocking caller:
// it subscribes to the encoder, requests the stop, and then waits either for
// the completion signal (event strategy) or by polling a completion flag a
// bounded number of times (poll strategy). A poll that runs out of attempts,
// or a cancelled context, leaves the controller in stopping until Reset.
package recorder
