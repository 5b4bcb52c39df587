// Package srs implements the review scheduler: the SM-2 update rule that
// decides, from a learner's recall grade, how long to wait before an item is
// shown again.
//
// The calculation functions are pure. The Service wraps them with input
// validation and an injectable Clock so callers never read the wall clock
// implicitly.
package srs
