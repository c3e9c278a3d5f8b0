package serde

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"

	"github.com/pkg/errors"
)

const intSize = 8
const int32Size = 4
const float64Size = 8
const float32Size = 4

var order = binary.LittleEndian

func ByteWriteTo(w io.Writer, payload byte) (total int64, err error) {
	var ni int
	var buffer [1]byte
	buffer[0] = payload
	ni, err = w.Write(buffer[:])
	if err != nil {
		err = errors.Wrap(err, "couldn't serialize byte value")
		return
	}
	if ni != len(buffer) {
		err = errors.Errorf("Written data length %v. Expected %v", ni, len(buffer))
		return
	}
	total += int64(ni)
	return
}

func ByteReadFrom(payload *byte, r io.Reader) (total int64, err error) {
	var ni int
	var buffer [1]byte
	ni, err = io.ReadFull(r, buffer[:])
	total += int64(ni)
	if err != nil {
		err = errors.Wrap(err, "couldn't deserialize byte value")
		return
	}
	*payload = buffer[0]
	return total, nil
}

func IntWriteTo(w io.Writer, payload int64) (total int64, err error) {
	err = binary.Write(w, order, uint64(payload))
	if err != nil {
		err = errors.Wrap(err, "couldn't serialize integer value")
		return
	}
	total += int64(intSize)
	return
}

func IntReadFrom(payload *int64, r io.Reader) (total int64, err error) {
	err = binary.Read(r, order, payload)
	if err != nil {
		err = errors.Wrap(err, "couldn't deserialize integer value")
		return
	}
	total += intSize
	return total, nil
}

func Int32WriteTo(w io.Writer, payload int32) (total int64, err error) {
	err = binary.Write(w, order, payload)
	if err != nil {
		err = errors.Wrap(err, "couldn't serialize int32 value")
		return
	}
	total += int64(int32Size)
	return
}

func Int32ReadFrom(payload *int32, r io.Reader) (total int64, err error) {
	err = binary.Read(r, order, payload)
	if err != nil {
		err = errors.Wrap(err, "couldn't deserialize int32 value")
		return
	}
	total += int32Size
	return total, nil
}

func Float64WriteTo(w io.Writer, payload float64) (total int64, err error) {
	err = binary.Write(w, order, math.Float64bits(payload))
	if err != nil {
		err = errors.Wrap(err, "couldn't serialize float64 value")
		return
	}
	total += int64(float64Size)
	return
}

func Float64ReadFrom(payload *float64, r io.Reader) (total int64, err error) {
	var bits uint64
	err = binary.Read(r, order, &bits)
	if err != nil {
		err = errors.Wrap(err, "couldn't deserialize float64 value")
		return
	}
	*payload = math.Float64frombits(bits)
	total += float64Size
	return total, nil
}

func Float32WriteTo(w io.Writer, payload float32) (total int64, err error) {
	err = binary.Write(w, order, math.Float32bits(payload))
	if err != nil {
		err = errors.Wrap(err, "couldn't serialize float32 value")
		return
	}
	total += int64(float32Size)
	return
}

func Float32ReadFrom(payload *float32, r io.Reader) (total int64, err error) {
	var bits uint32
	err = binary.Read(r, order, &bits)
	if err != nil {
		err = errors.Wrap(err, "couldn't deserialize float32 value")
		return
	}
	*payload = math.Float32frombits(bits)
	total += float32Size
	return total, nil
}

func StringWriteTo(w io.Writer, payload string) (total int64, err error) {
	var ni int
	var ni64 int64
	ni64, err = IntWriteTo(w, int64(len(payload)))
	if err != nil {
		err = errors.Wrap(err, "couldn't serialize string length")
		return
	}
	total += ni64
	buffer := []byte(payload)
	ni, err = w.Write(buffer)
	if err != nil {
		err = errors.Wrap(err, "couldn't serialize string data")
		return
	}
	if ni != len(buffer) {
		err = errors.Errorf("Written data length %v. Expected %v", ni, len(buffer))
		return
	}
	total += int64(ni)
	return
}

func StringReadFrom(payload *string, r io.Reader) (total int64, err error) {
	var ni64 int64
	var sLen int64
	ni64, err = IntReadFrom(&sLen, r)
	if err != nil {
		err = errors.Wrap(err, "could not read string length")
		return
	}
	total += ni64
	if sLen < 0 {
		err = errors.New("couldn't create string. Got negative length")
		return
	}
	buffer := bytes.Buffer{}
	buffer.Grow(int(sLen))
	ni64, err = io.CopyN(&buffer, r, sLen)
	if err != nil {
		err = errors.Wrapf(err, "couldn't read string data")
		return
	}
	if ni64 != sLen {
		err = errors.Errorf("Read data length %v. Expected %v", ni64, sLen)
		return
	}
	total += ni64
	*payload = buffer.String()
	return
}

func ByteSliceWriteTo(w io.Writer, payload []byte) (total int64, err error) {
	var ni int
	var ni64 int64
	ni64, err = IntWriteTo(w, int64(len(payload)))
	if err != nil {
		err = errors.Wrap(err, "couldn't serialize byte slice length")
		return
	}
	total += ni64
	ni, err = w.Write(payload)
	if err != nil {
		err = errors.Wrap(err, "couldn't serialize byte slice data")
		return
	}
	if ni != len(payload) {
		err = errors.Errorf("Written data length %v. Expected %v", ni, len(payload))
		return
	}
	total += int64(ni)
	return
}

func ByteSliceReadFrom(payload *[]byte, r io.Reader) (total int64, err error) {
	var ni int
	var ni64, sLen int64
	ni64, err = IntReadFrom(&sLen, r)
	if err != nil {
		err = errors.Wrap(err, "could not read byte slice length")
		return
	}
	total += ni64
	if sLen < 0 {
		err = errors.New("couldn't create byte slice. Got negative length")
		return
	}
	*payload = make([]byte, sLen)
	ni, err = io.ReadFull(r, *payload)
	total += int64(ni)
	if err != nil {
		err = errors.Wrapf(err, "couldn't read slice of [%v]bytes", sLen)
		return
	}
	return
}

func Int32SliceWriteTo(w io.Writer, payload []int32) (total int64, err error) {
	var ni64 int64
	ni64, err = IntWriteTo(w, int64(len(payload)))
	if err != nil {
		err = errors.Wrap(err, "couldn't serialize int32 slice length")
		return
	}
	total += ni64
	for i := range payload {
		ni64, err = Int32WriteTo(w, payload[i])
		if err != nil {
			err = errors.Wrapf(err, "couldn't serialize int32 slice value at position #%v", i)
			return
		}
		total += ni64
	}
	return
}

func Int32SliceReadFrom(payload *[]int32, r io.Reader) (total int64, err error) {
	var ni64, sLen int64
	ni64, err = IntReadFrom(&sLen, r)
	if err != nil {
		err = errors.Wrap(err, "could not read int32 slice length")
		return
	}
	total += ni64
	if sLen < 0 {
		err = errors.New("couldn't create int32 slice. Got negative length")
		return
	}
	*payload = make([]int32, sLen)
	for i := range *payload {
		ni64, err = Int32ReadFrom(&(*payload)[i], r)
		if err != nil {
			err = errors.Wrapf(err, "couldn't deserialize int32 slice value at position #%v", i)
			return
		}
		total += ni64
	}
	return
}

func Float32SliceWriteTo(w io.Writer, payload []float32) (total int64, err error) {
	var ni64 int64
	ni64, err = IntWriteTo(w, int64(len(payload)))
	if err != nil {
		err = errors.Wrap(err, "couldn't serialize float32 slice length")
		return
	}
	total += ni64
	for i := range payload {
		ni64, err = Float32WriteTo(w, payload[i])
		if err != nil {
			err = errors.Wrapf(err, "couldn't serialize float32 slice value at position #%v", i)
			return
		}
		total += ni64
	}
	return
}

func Float32SliceReadFrom(payload *[]float32, r io.Reader) (total int64, err error) {
	var ni64, sLen int64
	ni64, err = IntReadFrom(&sLen, r)
	if err != nil {
		err = errors.Wrap(err, "could not read float32 slice length")
		return
	}
	total += ni64
	if sLen < 0 {
		err = errors.New("couldn't create float32 slice. Got negative length")
		return
	}
	*payload = make([]float32, sLen)
	for i := range *payload {
		ni64, err = Float32ReadFrom(&(*payload)[i], r)
		if err != nil {
			err = errors.Wrapf(err, "couldn't deserialize float32 slice value at position #%v", i)
			return
		}
		total += ni64
	}
	return
}

func Float64SliceWriteTo(w io.Writer, payload []float64) (total int64, err error) {
	var ni64 int64
	ni64, err = IntWriteTo(w, int64(len(payload)))
	if err != nil {
		err = errors.Wrap(err, "couldn't serialize float64 slice length")
		return
	}
	total += ni64
	for i := range payload {
		ni64, err = Float64WriteTo(w, payload[i])
		if err != nil {
			err = errors.Wrapf(err, "couldn't serialize float64 slice value at position #%v", i)
			return
		}
		total += ni64
	}
	return
}

func Float64SliceReadFrom(payload *[]float64, r io.Reader) (total int64, err error) {
	var ni64, sLen int64
	ni64, err = IntReadFrom(&sLen, r)
	if err != nil {
		err = errors.Wrap(err, "could not read float64 slice length")
		return
	}
	total += ni64
	if sLen < 0 {
		err = errors.New("couldn't create float64 slice. Got negative length")
		return
	}
	*payload = make([]float64, sLen)
	for i := range *payload {
		ni64, err = Float64ReadFrom(&(*payload)[i], r)
		if err != nil {
			err = errors.Wrapf(err, "couldn't deserialize float64 slice value at position #%v", i)
			return
		}
		total += ni64
	}
	return
}

func StringSliceWriteTo(w io.Writer, payload []string) (total int64, err error) {
	var ni64 int64
	ni64, err = IntWriteTo(w, int64(len(payload)))
	if err != nil {
		err = errors.Wrap(err, "couldn't serialize string slice length")
		return
	}
	total += ni64
	for i := range payload {
		ni64, err = StringWriteTo(w, payload[i])
		if err != nil {
			err = errors.Wrapf(err, "couldn't serialize string slice value at position #%v", i)
			return
		}
		total += ni64
	}
	return
}

func StringSliceReadFrom(payload *[]string, r io.Reader) (total int64, err error) {
	var ni64, sLen int64
	ni64, err = IntReadFrom(&sLen, r)
	if err != nil {
		err = errors.Wrap(err, "could not read string slice length")
		return
	}
	total += ni64
	if sLen < 0 {
		err = errors.New("couldn't create string slice. Got negative length")
		return
	}
	*payload = make([]string, sLen)
	for i := range *payload {
		ni64, err = StringReadFrom(&(*payload)[i], r)
		if err != nil {
			err = errors.Wrapf(err, "couldn't deserialize string slice value at position #%v", i)
			return
		}
		total += ni64
	}
	return
}
