package common

import (
	"encoding/binary"
	"io"
)

func WriteString(str string, w io.Writer) (n int64, err error) {
	buf := []byte(str)
	if err = binary.Write(w, binary.BigEndian, uint16(len(buf))); err != nil {
		return
	}
	wn, err := w.Write(buf)
	return int64(wn + 2), err
}

func ReadString(r io.Reader) (str string, n int64, err error) {
	strLen := uint16(0)
	if err = binary.Read(r, binary.BigEndian, &strLen); err != nil {
		return
	}
	buf := make([]byte, strLen)
	if _, err = io.ReadFull(r, buf); err != nil {
		return
	}
	str = string(buf)
	n = int64(strLen) + 2
	return
}

func WriteBytes(buf []byte, w io.Writer) (n int64, err error) {
	if err = binary.Write(w, binary.BigEndian, uint32(len(buf))); err != nil {
		return
	}
	wn, err := w.Write(buf)
	return int64(wn + 4), err
}

func ReadBytes(r io.Reader) (buf []byte, n int64, err error) {
	bufLen := uint32(0)
	if err = binary.Read(r, binary.BigEndian, &bufLen); err != nil {
		return
	}
	buf = make([]byte, bufLen)
	if _, err = io.ReadFull(r, buf); err != nil {
		return
	}
	n = int64(bufLen) + 4
	return
}

func WriteBool(v bool, w io.Writer) (n int64, err error) {
	b := uint8(0)
	if v {
		b = 1
	}
	if err = binary.Write(w, binary.BigEndian, b); err != nil {
		return
	}
	return 1, nil
}

func ReadBool(r io.Reader) (v bool, n int64, err error) {
	b := uint8(0)
	if err = binary.Read(r, binary.BigEndian, &b); err != nil {
		return
	}
	return b != 0, 1, nil
}
