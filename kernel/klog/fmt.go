// Package klog provides a minimal Printf implementation safe to call before
// the global allocator is available. It never allocates: every verb is
// formatted into a small stack buffer and written straight to the active
// console sink.
package klog

import "rvkernel/kernel/console"

// maxNumBufSize bounds the scratch buffer used for numeric formatting.
const maxNumBufSize = 32

var (
	errMissingArg   = []byte("(MISSING)")
	errWrongArgType = []byte("%!(WRONGTYPE)")
	errNoVerb       = []byte("%!(NOVERB)")
	errExtraArg     = []byte("%!(EXTRA)")
	trueValue       = []byte("true")
	falseValue      = []byte("false")

	numFmtBuf  = make([]byte, maxNumBufSize)
	singleByte = make([]byte, 1)
)

// Printf supports a deliberately small subset of fmt's verbs:
//
//	%s  the uninterpreted bytes of a string or []byte
//	%o  integer, base 8
//	%d  integer, base 10
//	%x  integer, base 16, lower-case
//	%t  "true" or "false"
//
// An optional decimal width may precede any verb. String and base-10 values
// are left-padded with spaces; base-8/16 values are left-padded with
// zeroes. There is no support for %v, %p or struct formatting: those need
// reflection, which allocates, which is unsafe before the allocator phase
// transition (C5) completes.
func Printf(format string, args ...interface{}) {
	var (
		nextCh                       byte
		nextArgIndex                 int
		blockStart, blockEnd, padLen int
		fmtLen                       = len(format)
	)

	for blockEnd < fmtLen {
		nextCh = format[blockEnd]
		if nextCh != '%' {
			blockEnd++
			continue
		}

		if blockStart < blockEnd {
			writeString(format[blockStart:blockEnd])
		}

		padLen = 0
		blockEnd++
	parseFmt:
		for ; blockEnd < fmtLen; blockEnd++ {
			nextCh = format[blockEnd]
			switch {
			case nextCh == '%':
				writeByte('%')
				break parseFmt
			case nextCh >= '0' && nextCh <= '9':
				padLen = (padLen * 10) + int(nextCh-'0')
				continue
			case nextCh == 'd' || nextCh == 'x' || nextCh == 'o' || nextCh == 's' || nextCh == 't':
				if nextArgIndex >= len(args) {
					console.WriteBytes(errMissingArg)
					break parseFmt
				}

				switch nextCh {
				case 'o':
					fmtInt(args[nextArgIndex], 8, padLen)
				case 'd':
					fmtInt(args[nextArgIndex], 10, padLen)
				case 'x':
					fmtInt(args[nextArgIndex], 16, padLen)
				case 's':
					fmtString(args[nextArgIndex], padLen)
				case 't':
					fmtBool(args[nextArgIndex])
				}

				nextArgIndex++
				break parseFmt
			default:
				console.WriteBytes(errNoVerb)
			}
		}
		blockStart, blockEnd = blockEnd+1, blockEnd+1
	}

	if blockStart != blockEnd {
		writeString(format[blockStart:blockEnd])
	}

	for ; nextArgIndex < len(args); nextArgIndex++ {
		console.WriteBytes(errExtraArg)
	}
}

func writeByte(b byte) {
	singleByte[0] = b
	console.WriteBytes(singleByte)
}

func writeString(s string) {
	for i := 0; i < len(s); i++ {
		writeByte(s[i])
	}
}

func fmtBool(v interface{}) {
	b, ok := v.(bool)
	if !ok {
		console.WriteBytes(errWrongArgType)
		return
	}
	if b {
		console.WriteBytes(trueValue)
	} else {
		console.WriteBytes(falseValue)
	}
}

func fmtString(v interface{}, padLen int) {
	switch casted := v.(type) {
	case string:
		repeat(' ', padLen-len(casted))
		writeString(casted)
	case []byte:
		repeat(' ', padLen-len(casted))
		console.WriteBytes(casted)
	default:
		console.WriteBytes(errWrongArgType)
	}
}

func repeat(ch byte, count int) {
	for i := 0; i < count; i++ {
		writeByte(ch)
	}
}

// fmtInt formats v (any built-in signed/unsigned integer type) in the given
// base with left padding to padLen.
func fmtInt(v interface{}, base, padLen int) {
	var (
		sval             int64
		uval             uint64
		divider          uint64
		padCh            byte
		left, right, end int
	)

	if padLen >= maxNumBufSize {
		padLen = maxNumBufSize - 1
	}

	switch base {
	case 8:
		divider, padCh = 8, '0'
	case 10:
		divider, padCh = 10, ' '
	case 16:
		divider, padCh = 16, '0'
	}

	switch casted := v.(type) {
	case uint8:
		uval = uint64(casted)
	case uint16:
		uval = uint64(casted)
	case uint32:
		uval = uint64(casted)
	case uint64:
		uval = casted
	case uintptr:
		uval = uint64(casted)
	case int8:
		sval = int64(casted)
	case int16:
		sval = int64(casted)
	case int32:
		sval = int64(casted)
	case int64:
		sval = casted
	case int:
		sval = int64(casted)
	default:
		console.WriteBytes(errWrongArgType)
		return
	}

	if sval < 0 {
		uval = uint64(-sval)
	} else if sval > 0 {
		uval = uint64(sval)
	}

	for right < maxNumBufSize {
		remainder := uval % divider
		if remainder < 10 {
			numFmtBuf[right] = byte(remainder) + '0'
		} else {
			numFmtBuf[right] = byte(remainder-10) + 'a'
		}
		right++

		uval /= divider
		if uval == 0 {
			break
		}
	}

	for ; right-left < padLen; right++ {
		numFmtBuf[right] = padCh
	}

	if sval < 0 {
		for end = right - 1; numFmtBuf[end] == ' '; end-- {
		}
		if end == right-1 {
			right++
		}
		numFmtBuf[end+1] = '-'
	}

	end = right
	for right = right - 1; left < right; left, right = left+1, right-1 {
		numFmtBuf[left], numFmtBuf[right] = numFmtBuf[right], numFmtBuf[left]
	}

	console.WriteBytes(numFmtBuf[0:end])
}
