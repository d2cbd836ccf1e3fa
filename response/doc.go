// Copyright (c) IndexD Authors.
// Licensed under the MIT License.

/*
Package response renders update results in the format the wt parameter
selects.

A Response is an ordered list of named entries (status header first,
then whatever the handler adds). Writers serialize it: JSON, XML, CSV,
and CBOR implementations ship in the Registry, which also tracks the
default writer a request falls back to when it names no wt.
*/
package response
