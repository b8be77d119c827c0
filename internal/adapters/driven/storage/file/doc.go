// Package file provides the on-disk document index, document store and
// provider response cache.
//
// Layout under the data directory:
//
//	index.json                                  path -> fingerprint
//	documents/<fingerprint>.json                one record per fingerprint
//	cache/<kind>/<provider>/<model>/<hash>.json request and result
//
// Every write goes through a temporary file and a rename so readers never
// observe a partial file.
package file
