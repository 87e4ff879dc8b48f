// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

package edifact

// segmentRole says where a segment goes when a document is assembled or
// grouped into order lines.
type segmentRole int

const (
	roleBody segmentRole = iota
	roleInterchangeHeader
	roleMessageHeader
	roleLine
	roleDescription
	roleQuantity
	roleAmount
	rolePrice
	roleReference
)

// segmentRoles maps known tags to their role. Unlisted tags are roleBody.
var segmentRoles = map[string]segmentRole{
	TagInterchangeHeader: roleInterchangeHeader,
	TagMessageHeader:     roleMessageHeader,
	"LIN":                roleLine,
	"IMD":                roleDescription,
	"QTY":                roleQuantity,
	"MOA":                roleAmount,
	"PRI":                rolePrice,
	"RFF":                roleReference,
}

func roleOf(tag string) segmentRole {
	if role, ok := segmentRoles[tag]; ok {
		return role
	}
	return roleBody
}
