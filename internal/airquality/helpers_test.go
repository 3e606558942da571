package airquality_test

import (
	"context"
	"sync"

	"github.com/aqimon/aqi-alerting/internal/airquality"
)

// fakeProvider lets each test script the provider boundary and count calls.
type fakeProvider struct {
	mu             sync.Mutex
	geocodeFn      func(name string, limit int) ([]airquality.GeoResult, error)
	reverseFn      func(lat, lon float64, limit int) ([]airquality.GeoResult, error)
	pollutionFn    func(lat, lon float64) (airquality.PollutionSample, error)
	geocodeCalls   int
	reverseCalls   int
	pollutionCalls int
}

func (f *fakeProvider) Geocode(_ context.Context, name string, limit int) ([]airquality.GeoResult, error) {
	f.mu.Lock()
	f.geocodeCalls++
	f.mu.Unlock()
	if f.geocodeFn == nil {
		return nil, nil
	}
	return f.geocodeFn(name, limit)
}

func (f *fakeProvider) ReverseGeocode(_ context.Context, lat, lon float64, limit int) ([]airquality.GeoResult, error) {
	f.mu.Lock()
	f.reverseCalls++
	f.mu.Unlock()
	if f.reverseFn == nil {
		return nil, nil
	}
	return f.reverseFn(lat, lon, limit)
}

func (f *fakeProvider) AirPollution(_ context.Context, lat, lon float64) (airquality.PollutionSample, error) {
	f.mu.Lock()
	f.pollutionCalls++
	f.mu.Unlock()
	if f.pollutionFn == nil {
		return airquality.PollutionSample{}, nil
	}
	return f.pollutionFn(lat, lon)
}

type sentMail struct {
	to      string
	subject string
	body    string
}

// fakeMail records outgoing messages and can be forced to fail.
type fakeMail struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (f *fakeMail) Send(to, subject, body string) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

func floatPtr(v float64) *float64 { return &v }
