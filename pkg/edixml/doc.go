// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

/*
Package edixml renders EDIFACT orders as XML and reads them back.

The XML form is a lossless, structure-preserving view of an
[edifact.Order], useful when an EDIFACT interchange has to travel through
XML-only tooling such as XSLT pipelines or an XML Header Envelope:

	<EDIFACT una="UNA:+.?*'">
	  <InterchangeHeader>
	    <Segment tag="UNB" position="0">
	      <Element><Component>UNOA</Component><Component>4</Component></Element>
	      ...
	    </Segment>
	  </InterchangeHeader>
	  <MessageHeader>...</MessageHeader>
	  <Body>
	    <Segment tag="BGM" position="2">...</Segment>
	  </Body>
	</EDIFACT>

Component text is stored unescaped; EDIFACT escaping only applies to the
flat-text form.
*/
package edixml
