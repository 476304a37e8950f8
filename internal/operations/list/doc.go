// Package list handles S3 object key listing.
// This includes continuation-token pagination and channel-based streaming of keys.
//
// The stream is lazy and finite: pages are fetched only as keys are consumed,
// and a listing cannot be restarted once it has begun.
package list
