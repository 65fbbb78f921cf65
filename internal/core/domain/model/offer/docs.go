// Package offer contains the Offer entity: a time-boxed proposal for one courier
// to deliver one order, resolved once as accepted, rejected or expired.
package offer
