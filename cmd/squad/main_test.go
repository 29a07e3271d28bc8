package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"io"
	"strconv"
	"testing"

	"github.com/okian/fplsquad/internal/adapters/catalog"
	"github.com/okian/fplsquad/internal/domain/model"
	"github.com/okian/fplsquad/internal/sampledata"
	"github.com/smartystreets/goconvey/convey"
	"gopkg.in/yaml.v3"
)

func sampleFiles(t *testing.T) (string, string) {
	t.Helper()
	b, fx, err := sampledata.Generate(sampledata.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	bootstrap, fixtures, err := sampledata.WriteFiles(t.TempDir(), b, fx)
	if err != nil {
		t.Fatal(err)
	}
	return bootstrap, fixtures
}

func TestRun(t *testing.T) {
	bootstrap, fixtures := sampleFiles(t)
	ctx := context.Background()

	convey.Convey("Given saved FPL payloads", t, func() {
		base := []string{"-bootstrap", bootstrap, "-fixtures", fixtures}

		convey.Convey("When printing json", func() {
			var out bytes.Buffer
			err := run(ctx, append(base, "-format", "json"), &out, io.Discard)
			convey.So(err, convey.ShouldBeNil)

			var r report
			convey.So(json.Unmarshal(out.Bytes(), &r), convey.ShouldBeNil)

			convey.Convey("Then the full squad is listed with roles", func() {
				convey.So(r.Status, convey.ShouldEqual, "complete")
				convey.So(r.Gameweek, convey.ShouldEqual, sampledata.DefaultGameweek)
				convey.So(r.Players, convey.ShouldHaveLength, 15)
				convey.So(r.Captaincy, convey.ShouldHaveLength, 3)
				convey.So(r.Players[0].Role, convey.ShouldNotEqual, roleBench)
				convey.So(r.Players[14].Role, convey.ShouldEqual, roleBench)
				convey.So(countRole(r, roleCaptain), convey.ShouldEqual, 1)
				convey.So(countRole(r, roleVice), convey.ShouldEqual, 1)
				convey.So(countRole(r, roleBench), convey.ShouldEqual, 4)
			})

			convey.Convey("Then locking a benched player is kept and an excluded captain is dropped", func() {
				benched := r.Players[14].ID
				captain := r.Captaincy[0].ID

				var again bytes.Buffer
				args := append(base, "-format", "json", "-lock", strconv.Itoa(benched), "-exclude", strconv.Itoa(captain))
				convey.So(run(ctx, args, &again, io.Discard), convey.ShouldBeNil)

				var r2 report
				convey.So(json.Unmarshal(again.Bytes(), &r2), convey.ShouldBeNil)
				convey.So(hasPlayer(r2, benched), convey.ShouldBeTrue)
				convey.So(hasPlayer(r2, captain), convey.ShouldBeFalse)
			})
		})

		convey.Convey("When printing yaml", func() {
			var out bytes.Buffer
			convey.So(run(ctx, append(base, "-format", "yaml"), &out, io.Discard), convey.ShouldBeNil)

			var doc map[string]interface{}
			convey.So(yaml.Unmarshal(out.Bytes(), &doc), convey.ShouldBeNil)

			convey.Convey("Then the keys follow the report tags", func() {
				convey.So(doc["status"], convey.ShouldEqual, "complete")
				convey.So(doc["availability_threshold"], convey.ShouldNotBeNil)
				convey.So(doc["players"], convey.ShouldHaveLength, 15)
			})
		})

		convey.Convey("When printing a table", func() {
			var out bytes.Buffer
			convey.So(run(ctx, base, &out, io.Discard), convey.ShouldBeNil)

			convey.Convey("Then the header and the captaincy lines are present", func() {
				convey.So(out.String(), convey.ShouldContainSubstring, "status complete")
				convey.So(out.String(), convey.ShouldContainSubstring, "NAME")
				convey.So(out.String(), convey.ShouldContainSubstring, "SCORE")
				convey.So(out.String(), convey.ShouldContainSubstring, "adjusted total")
			})
		})

		convey.Convey("When the budget cannot buy fifteen players", func() {
			var out bytes.Buffer
			err := run(ctx, append(base, "-format", "json", "-budget", "50"), &out, io.Discard)

			convey.Convey("Then the partial result is printed and the error is returned", func() {
				convey.So(errors.Is(err, model.ErrSquadIncomplete), convey.ShouldBeTrue)
				var r report
				convey.So(json.Unmarshal(out.Bytes(), &r), convey.ShouldBeNil)
				convey.So(r.Status, convey.ShouldEqual, "incomplete")
				convey.So(r.Unmet, convey.ShouldNotBeEmpty)
			})
		})

		convey.Convey("When a locked name matches nobody", func() {
			err := run(ctx, append(base, "-lock", "Nobody At All"), io.Discard, io.Discard)

			convey.Convey("Then the lookup error is returned", func() {
				convey.So(errors.Is(err, catalog.ErrPlayerNotFound), convey.ShouldBeTrue)
			})
		})
	})
}

func TestParseFlags(t *testing.T) {
	convey.Convey("Given command line arguments", t, func() {
		convey.Convey("When they are the defaults", func() {
			o, err := parseFlags(nil, io.Discard)
			convey.So(err, convey.ShouldBeNil)
			convey.So(o.format, convey.ShouldEqual, formatTable)
			convey.So(o.threshold, convey.ShouldBeLessThan, 0)
		})

		convey.Convey("When they are invalid", func() {
			_, err := parseFlags([]string{"-format", "xml"}, io.Discard)
			convey.So(errors.Is(err, errUsage), convey.ShouldBeTrue)

			_, err = parseFlags([]string{"-fixtures", "fx.json"}, io.Discard)
			convey.So(errors.Is(err, errUsage), convey.ShouldBeTrue)

			_, err = parseFlags([]string{"extra"}, io.Discard)
			convey.So(errors.Is(err, errUsage), convey.ShouldBeTrue)

			_, err = parseFlags([]string{"-h"}, io.Discard)
			convey.So(errors.Is(err, flag.ErrHelp), convey.ShouldBeTrue)
		})

		convey.Convey("When building a request", func() {
			cands := []model.Candidate{{ID: 7, Name: "Bukayo Saka"}, {ID: 9, Name: "Erling Haaland"}}
			req, err := buildRequest(options{budget: 95.46, threshold: 60, lock: "saka, 9", exclude: ""}, cands)

			convey.So(err, convey.ShouldBeNil)
			convey.So(req.Budget.String(), convey.ShouldEqual, "95.5")
			convey.So(*req.AvailabilityThreshold, convey.ShouldEqual, 60.0)
			convey.So(req.Locked, convey.ShouldResemble, []int{7, 9})
			convey.So(req.Excluded, convey.ShouldBeEmpty)
		})
	})
}

func countRole(r report, role string) int {
	n := 0
	for _, p := range r.Players {
		if p.Role == role {
			n++
		}
	}
	return n
}

func hasPlayer(r report, id int) bool {
	for _, p := range r.Players {
		if p.ID == id {
			return true
		}
	}
	return false
}
